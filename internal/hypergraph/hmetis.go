package hypergraph

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/hyperpart/pkg/compression"
	"github.com/hyperpart/pkg/errors"
)

// hMETIS hypergraph file types. Bit 0 marks hyperedge weights, the decimal
// tens digit marks hypernode weights.
const (
	typeUnweighted  = 0
	typeEdgeWeights = 1
	typeNodeWeights = 10
	typeBothWeights = 11
)

// Parse reads a hypergraph in hMETIS .hgr format.
//
// Comment lines start with '%'. The header line carries
// "num_hyperedges num_hypernodes [type]". Pin ids are 1-based in the file
// and converted to 0-based.
func Parse(r io.Reader) (*Hypergraph, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 1024*1024), 64*1024*1024)

	line, err := nextContentLine(scanner)
	if err != nil {
		return nil, err
	}

	header := strings.Fields(line)
	if len(header) < 2 || len(header) > 3 {
		return nil, errors.Wrap(errors.CodeParseError, "malformed hMETIS header", nil)
	}

	numEdges, err1 := strconv.Atoi(header[0])
	numNodes, err2 := strconv.Atoi(header[1])
	if err1 != nil || err2 != nil || numEdges < 0 || numNodes < 0 {
		return nil, errors.Wrap(errors.CodeParseError, "malformed hMETIS header", nil)
	}

	hgrType := typeUnweighted
	if len(header) == 3 {
		hgrType, err = strconv.Atoi(header[2])
		if err != nil {
			return nil, errors.Wrap(errors.CodeParseError, "malformed hypergraph type", err)
		}
	}
	switch hgrType {
	case typeUnweighted, typeEdgeWeights, typeNodeWeights, typeBothWeights:
	default:
		return nil, errors.Wrap(errors.CodeParseError,
			"hypergraph type must be one of 0, 1, 10, 11", nil)
	}

	hasEdgeWeights := hgrType%10 == 1
	hasNodeWeights := hgrType/10 == 1

	pins := make([][]int, numEdges)
	var edgeWeights []int64
	if hasEdgeWeights {
		edgeWeights = make([]int64, numEdges)
	}

	for e := 0; e < numEdges; e++ {
		line, err := nextContentLine(scanner)
		if err != nil {
			return nil, errors.Wrap(errors.CodeParseError, "truncated hyperedge section", err)
		}

		fields := strings.Fields(line)
		if hasEdgeWeights {
			if len(fields) == 0 {
				return nil, errors.Wrap(errors.CodeParseError, "missing hyperedge weight", nil)
			}
			w, err := strconv.ParseInt(fields[0], 10, 64)
			if err != nil {
				return nil, errors.Wrap(errors.CodeParseError, "malformed hyperedge weight", err)
			}
			edgeWeights[e] = w
			fields = fields[1:]
		}

		if len(fields) == 0 {
			return nil, errors.Wrap(errors.CodeParseError, "hyperedge without pins", nil)
		}

		edgePins := make([]int, len(fields))
		for i, f := range fields {
			p, err := strconv.Atoi(f)
			if err != nil {
				return nil, errors.Wrap(errors.CodeParseError, "malformed pin id", err)
			}
			if p < 1 || p > numNodes {
				return nil, errors.Wrap(errors.CodeParseError,
					"pin id out of range: "+f, nil)
			}
			edgePins[i] = p - 1
		}
		pins[e] = edgePins
	}

	var nodeWeights []int64
	if hasNodeWeights {
		nodeWeights = make([]int64, numNodes)
		for v := 0; v < numNodes; v++ {
			line, err := nextContentLine(scanner)
			if err != nil {
				return nil, errors.Wrap(errors.CodeParseError, "truncated hypernode weight section", err)
			}
			w, err := strconv.ParseInt(strings.Fields(line)[0], 10, 64)
			if err != nil {
				return nil, errors.Wrap(errors.CodeParseError, "malformed hypernode weight", err)
			}
			nodeWeights[v] = w
		}
	}

	return New(numNodes, pins, edgeWeights, nodeWeights), nil
}

// ParseFile reads a hypergraph from an .hgr file on disk. Files with a
// .gz/.zst suffix are decompressed transparently.
func ParseFile(path string) (*Hypergraph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.CodeStorageError, "cannot open hypergraph file", err)
	}
	defer f.Close()

	rc, err := compression.NewReaderForPath(f, path)
	if err != nil {
		return nil, errors.Wrap(errors.CodeParseError, "cannot decompress hypergraph file", err)
	}
	defer rc.Close()

	return Parse(rc)
}

// nextContentLine returns the next non-empty, non-comment line.
func nextContentLine(scanner *bufio.Scanner) (string, error) {
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "%") {
			continue
		}
		return line, nil
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", io.ErrUnexpectedEOF
}
