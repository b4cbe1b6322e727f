// normtile computes the tiling of a norm operator from the command line.
//
// It reads the kernel's compile-info JSON blob and an ONNX node description, lowers the node with the default
// plugins and prints the tiling record of each lowered operator that has a reduction:
//
//	normtile -info=compile_info.json -node='{"op_type": "ReduceSum", "attributes": {"axes": [-1]}}' \
//	    -shape=2,10496,41 -dtype=float16
//
// With -persist, constant-shape solutions are written back to the compile-info file.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/normtiling"
	"github.com/gomlx/normtiling/internal/utils"
	"github.com/gomlx/normtiling/plugins"
	"github.com/gomlx/normtiling/types/shapes"
	"github.com/janpfeifer/must"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

var (
	flagInfo    = flag.String("info", "", "Path to the compile-info JSON file of the kernel.")
	flagNode    = flag.String("node", "", "ONNX node description in JSON, or @path to a file holding it.")
	flagShape   = flag.String("shape", "", "Comma-separated dimensions of the input, e.g. 2,10496,41.")
	flagDType   = flag.String("dtype", "float32", "Input dtype, e.g. float16, float32, bfloat16.")
	flagPersist = flag.Bool("persist", false, "For constant shapes, write the solution back to the compile-info file.")
)

func main() {
	klog.InitFlags(nil)
	flag.Parse()
	registry := plugins.NewDefaultRegistry()
	if *flagInfo == "" || *flagNode == "" || *flagShape == "" {
		flag.Usage()
		fmt.Fprintf(flag.CommandLine.Output(), "\nSupported op types: %s\n", strings.Join(registry.OpTypes(), ", "))
		os.Exit(1)
	}
	input := shapes.Make(parseDType(*flagDType), must.M1(parseDimensions(*flagShape))...)
	node := must.M1(plugins.ParseNode(must.M1(readNode(*flagNode))))
	subgraph := must.M1(registry.Lower(node, input))
	blob := must.M1(os.ReadFile(*flagInfo))

	fmt.Printf("%s on %s (%s) -> %s\n", node, input, humanize.Bytes(uint64(input.Memory())), subgraph.Output)
	for _, op := range subgraph.Operators {
		if _, found := op.Attributes["axes"]; !found {
			fmt.Printf("  %s: elementwise, not tiled\n", op)
			continue
		}
		var runInfo *normtiling.RunInfo
		if *flagPersist {
			var updated []byte
			updated, runInfo = must.M2(normtiling.SolveConstShape(blob, op))
			must.M(os.WriteFile(*flagInfo, updated, 0o644))
			blob = updated
		} else {
			tiler := must.M1(normtiling.NewFromJSON(blob))
			runInfo = must.M1(tiler.Tile(op))
		}
		printRunInfo(op, runInfo)
	}
}

func parseDType(name string) dtypes.DType {
	dtype := utils.DTypeFromName(name)
	if dtype == dtypes.InvalidDType {
		klog.Fatalf("unknown dtype %q", name)
	}
	return dtype
}

func parseDimensions(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	dims := make([]int, len(parts))
	for ii, part := range parts {
		dim, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || dim < 0 {
			return nil, errors.Errorf("invalid dimension %q in shape %q", part, s)
		}
		dims[ii] = dim
	}
	return dims, nil
}

func readNode(flagValue string) ([]byte, error) {
	if path, found := strings.CutPrefix(flagValue, "@"); found {
		return os.ReadFile(path)
	}
	return []byte(flagValue), nil
}

func printRunInfo(op *normtiling.Operator, runInfo *normtiling.RunInfo) {
	fmt.Printf("  %s:\n", op)
	fmt.Printf("    block_dim:   %d\n", runInfo.BlockDim)
	fmt.Printf("    tiling_key:  %d\n", runInfo.TilingKey)
	total := 0
	for ii, size := range runInfo.WorkspaceSizes {
		fmt.Printf("    workspace #%d: %s\n", ii, humanize.Bytes(uint64(size)))
		total += size
	}
	if len(runInfo.WorkspaceSizes) > 0 {
		fmt.Printf("    workspaces total: %s\n", humanize.Bytes(uint64(total)))
	}
	if runInfo.TilingData != nil {
		data := must.M1(runInfo.TilingDataBytes())
		fmt.Printf("    tiling_data: %v (%s)\n", runInfo.TilingData, humanize.Bytes(uint64(len(data))))
	}
}
