package parser

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"github.com/ttpr0/go-transit/geo"
	"github.com/ttpr0/go-transit/graph"
	. "github.com/ttpr0/go-transit/util"
	"golang.org/x/exp/slog"
)

// Reads the walkable street network of an osm pbf file.
//
// Ways are split at nodes shared with other ways, so graph nodes are junctions and way ends.
func ParseWalkGraph(ctx context.Context, pbf_file string, decoder IOSMDecoder) (*graph.GraphBase, error) {
	file, err := os.Open(pbf_file)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	nodes := NewList[OSMNode](10000)
	edges := NewList[OSMEdge](10000)
	if err := _ParseOsm(ctx, file, decoder, &nodes, &edges); err != nil {
		return nil, fmt.Errorf("parse %s: %w", pbf_file, err)
	}
	slog.Info(fmt.Sprintf("parsed walk graph with %v nodes and %v edges", nodes.Length(), edges.Length()))
	return _CreateGraphBase(nodes, edges), nil
}

func _ParseOsm(ctx context.Context, file io.ReadSeeker, decoder IOSMDecoder, nodes *List[OSMNode], edges *List[OSMEdge]) error {
	osm_nodes := NewDict[int64, TempNode](1000)
	index_mapping := NewDict[int64, int](1000)

	passes := []func(*osmpbf.Scanner){
		func(scanner *osmpbf.Scanner) { _InitWayHandler(scanner, decoder, osm_nodes) },
		func(scanner *osmpbf.Scanner) { _NodeHandler(scanner, osm_nodes, nodes, index_mapping) },
		func(scanner *osmpbf.Scanner) { _WayHandler(scanner, decoder, edges, osm_nodes, index_mapping) },
	}
	for _, pass := range passes {
		if _, err := file.Seek(0, io.SeekStart); err != nil {
			return err
		}
		scanner := osmpbf.New(ctx, file, runtime.GOMAXPROCS(-1))
		pass(scanner)
		err := scanner.Err()
		scanner.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

func _CreateGraphBase(osmnodes List[OSMNode], osmedges List[OSMEdge]) *graph.GraphBase {
	builder := graph.NewGraphBuilder()
	for _, osmnode := range osmnodes {
		builder.AddNode(osmnode.Point)
	}
	for _, osmedge := range osmedges {
		geom := geo.CoordArray(osmedge.Nodes)
		length := float32(geo.Length(geom))
		if osmedge.Oneway {
			builder.AddEdge(int32(osmedge.NodeA), int32(osmedge.NodeB), length, geom)
		} else {
			builder.AddBidirectional(int32(osmedge.NodeA), int32(osmedge.NodeB), length, geom)
		}
	}
	return builder.Build()
}

//*******************************************
// osm handler methods
//*******************************************

// Counts way references per node, way ends count twice so that they always become graph nodes.
func _InitWayHandler(scanner *osmpbf.Scanner, decoder IOSMDecoder, osm_nodes Dict[int64, TempNode]) {
	scanner.SkipNodes = true
	scanner.SkipRelations = true
	for scanner.Scan() {
		switch object := scanner.Object().(type) {
		case *osm.Way:
			tags := Dict[string, string](object.TagMap())
			if !decoder.IsValidHighway(tags) {
				continue
			}
			nodes := object.Nodes.NodeIDs()
			l := len(nodes)
			if l < 2 {
				continue
			}
			for i := 0; i < l; i++ {
				ndref := nodes[i].FeatureID().Ref()
				node := osm_nodes[ndref]
				node.Count += 1
				osm_nodes[ndref] = node
			}
			for _, ndref := range []int64{nodes[0].FeatureID().Ref(), nodes[l-1].FeatureID().Ref()} {
				node := osm_nodes[ndref]
				node.Count += 1
				osm_nodes[ndref] = node
			}
		default:
			continue
		}
	}
}

func _NodeHandler(scanner *osmpbf.Scanner, osm_nodes Dict[int64, TempNode], nodes *List[OSMNode], index_mapping Dict[int64, int]) {
	c := 0
	scanner.SkipWays = true
	scanner.SkipRelations = true
	for scanner.Scan() {
		switch object := scanner.Object().(type) {
		case *osm.Node:
			id := object.FeatureID().Ref()
			if !osm_nodes.ContainsKey(id) {
				continue
			}
			c += 1
			if c%100000 == 0 {
				slog.Debug(fmt.Sprintf("%v nodes read", c))
			}
			on := osm_nodes.Get(id)
			on.Point = geo.Coord{float32(object.Lon), float32(object.Lat)}
			if on.Count > 1 {
				nodes.Add(OSMNode{Point: on.Point})
				index_mapping.Set(id, nodes.Length()-1)
			}
			osm_nodes.Set(id, on)
		default:
			continue
		}
	}
}

func _WayHandler(scanner *osmpbf.Scanner, decoder IOSMDecoder, edges *List[OSMEdge], osm_nodes Dict[int64, TempNode], index_mapping Dict[int64, int]) {
	scanner.SkipNodes = true
	scanner.SkipRelations = true
	for scanner.Scan() {
		switch object := scanner.Object().(type) {
		case *osm.Way:
			tags := Dict[string, string](object.TagMap())
			if !decoder.IsValidHighway(tags) {
				continue
			}
			nodes := object.Nodes.NodeIDs()
			if len(nodes) < 2 {
				continue
			}
			oneway := decoder.IsOneway(tags)
			start := nodes[0].FeatureID().Ref()
			e := OSMEdge{Oneway: oneway}
			e.Nodes.Add(osm_nodes.Get(start).Point)
			for i := 1; i < len(nodes); i++ {
				curr := nodes[i].FeatureID().Ref()
				on := osm_nodes.Get(curr)
				e.Nodes.Add(on.Point)
				if on.Count > 1 && curr != start {
					e.NodeA = index_mapping.Get(start)
					e.NodeB = index_mapping.Get(curr)
					edges.Add(e)
					start = curr
					e = OSMEdge{Oneway: oneway}
					e.Nodes.Add(on.Point)
				}
			}
		default:
			continue
		}
	}
}

//*******************************************
// osm decoder
//*******************************************

type IOSMDecoder interface {
	IsValidHighway(tags Dict[string, string]) bool
	IsOneway(tags Dict[string, string]) bool
}
