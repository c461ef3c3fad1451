// Package community loads and validates community assignments for a
// hypergraph. Detecting communities is a concern of an upstream tool; this
// package only deals with carrying its output into the coarsening pipeline.
package community

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/hyperpart/pkg/errors"
)

// Load reads a community assignment file: one non-negative label per line,
// in hypernode order. Lines starting with '%' and blank lines are skipped.
func Load(r io.Reader, numNodes int) ([]int, error) {
	scanner := bufio.NewScanner(r)
	labels := make([]int, 0, numNodes)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "%") {
			continue
		}
		label, err := strconv.Atoi(line)
		if err != nil {
			return nil, errors.Wrap(errors.CodeParseError, "malformed community label", err)
		}
		if label < 0 {
			return nil, errors.Wrap(errors.CodeParseError,
				fmt.Sprintf("negative community label %d", label), nil)
		}
		labels = append(labels, label)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(errors.CodeParseError, "cannot read community file", err)
	}

	if len(labels) != numNodes {
		return nil, errors.Wrap(errors.CodeInvalidInput,
			fmt.Sprintf("%d community labels for %d hypernodes", len(labels), numNodes), nil)
	}

	return labels, nil
}

// LoadFile reads a community assignment from a file on disk.
func LoadFile(path string, numNodes int) ([]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.CodeStorageError, "cannot open community file", err)
	}
	defer f.Close()
	return Load(f, numNodes)
}

// RoundRobin assigns hypernodes to numCommunities communities in
// round-robin order. It is the fallback when no assignment file is given;
// it balances community sizes but ignores hypergraph structure entirely.
func RoundRobin(numNodes, numCommunities int) []int {
	if numCommunities < 1 {
		numCommunities = 1
	}
	labels := make([]int, numNodes)
	for v := range labels {
		labels[v] = v % numCommunities
	}
	return labels
}

// Count returns the number of distinct communities in the assignment.
func Count(labels []int) int {
	seen := make(map[int]struct{}, 16)
	for _, c := range labels {
		seen[c] = struct{}{}
	}
	return len(seen)
}
