package earthengine

import (
	"encoding/json"
	"strconv"

	"github.com/earthlens/earthlens/internal/core/domain"
)

// Expression is a serialized Earth Engine computation graph as accepted by
// the v1 REST API: a table of named value nodes plus the name of the result
// node. The graph mirrors what the official client libraries build when
// chaining ImageCollection operations; the server executes it remotely.
type Expression struct {
	Values map[string]ValueNode `json:"values"`
	Result string               `json:"result"`
}

// ValueNode is one node of an expression graph. Exactly one variant is set.
type ValueNode struct {
	constant   interface{}
	invocation *FunctionInvocation
	definition *FunctionDefinition
	argRef     string
	kind       nodeKind
}

type nodeKind int

const (
	kindConstant nodeKind = iota
	kindInvocation
	kindDefinition
	kindArgumentRef
)

// FunctionInvocation applies a named server-side algorithm to arguments.
type FunctionInvocation struct {
	FunctionName string               `json:"functionName"`
	Arguments    map[string]ValueNode `json:"arguments"`
}

// FunctionDefinition declares a lambda mapped over a collection. Body names
// a node in the enclosing expression's value table.
type FunctionDefinition struct {
	ArgumentNames []string `json:"argumentNames"`
	Body          string   `json:"body"`
}

// Constant wraps a literal JSON value (string, number, bool, list, or a
// GeoJSON object).
func Constant(v interface{}) ValueNode {
	return ValueNode{kind: kindConstant, constant: v}
}

// Invoke builds a server-side function call node.
func Invoke(name string, args map[string]ValueNode) ValueNode {
	return ValueNode{kind: kindInvocation, invocation: &FunctionInvocation{FunctionName: name, Arguments: args}}
}

// ArgRef references a lambda argument by name.
func ArgRef(name string) ValueNode {
	return ValueNode{kind: kindArgumentRef, argRef: name}
}

func (n ValueNode) MarshalJSON() ([]byte, error) {
	switch n.kind {
	case kindInvocation:
		return json.Marshal(struct {
			F *FunctionInvocation `json:"functionInvocationValue"`
		}{n.invocation})
	case kindDefinition:
		return json.Marshal(struct {
			F *FunctionDefinition `json:"functionDefinitionValue"`
		}{n.definition})
	case kindArgumentRef:
		return json.Marshal(struct {
			R string `json:"argumentReference"`
		}{n.argRef})
	default:
		return json.Marshal(struct {
			C interface{} `json:"constantValue"`
		}{n.constant})
	}
}

// graph accumulates named nodes for expressions that need out-of-line
// entries (lambda bodies must live in the value table).
type graph struct {
	values map[string]ValueNode
	next   int
}

func newGraph() *graph {
	return &graph{values: make(map[string]ValueNode)}
}

func (g *graph) add(n ValueNode) string {
	name := strconv.Itoa(g.next)
	g.next++
	g.values[name] = n
	return name
}

// lambda registers a single-argument function definition whose body is the
// given node, and returns the definition node.
func (g *graph) lambda(argName string, body ValueNode) ValueNode {
	bodyName := g.add(body)
	return ValueNode{kind: kindDefinition, definition: &FunctionDefinition{
		ArgumentNames: []string{argName},
		Body:          bodyName,
	}}
}

// finish roots the expression at the given node.
func (g *graph) finish(result ValueNode) Expression {
	name := g.add(result)
	return Expression{Values: g.values, Result: name}
}

// filteredCollection builds the shared query prefix: the source collection
// restricted by date range (when both bounds are present), region
// intersection, and cloud-cover ceiling.
func filteredCollection(collectionID string, geom ValueNode, start, end string, cloudThreshold int) ValueNode {
	coll := Invoke("ImageCollection.load", map[string]ValueNode{
		"id": Constant(collectionID),
	})

	if start != "" && end != "" {
		coll = Invoke("Collection.filter", map[string]ValueNode{
			"collection": coll,
			"filter": Invoke("Filter.dateRangeContains", map[string]ValueNode{
				"leftValue": Invoke("DateRange", map[string]ValueNode{
					"start": Constant(start),
					"end":   Constant(end),
				}),
				"rightField": Constant("system:time_start"),
			}),
		})
	}

	coll = Invoke("Collection.filter", map[string]ValueNode{
		"collection": coll,
		"filter": Invoke("Filter.intersects", map[string]ValueNode{
			"leftField":  Constant(".all"),
			"rightValue": geom,
		}),
	})

	return Invoke("Collection.filter", map[string]ValueNode{
		"collection": coll,
		"filter": Invoke("Filter.lessThan", map[string]ValueNode{
			"leftField":  Constant("CLOUDY_PIXEL_PERCENTAGE"),
			"rightValue": Constant(cloudThreshold),
		}),
	})
}

// tileExpression builds the visualized composite for a tile layer request:
// a median composite of the filtered collection, clipped to the buffered
// bounds of the drawn region, rendered as either true color or NDVI.
func tileExpression(collectionID string, q domain.TileQuery, geomJSON map[string]interface{}) Expression {
	g := newGraph()

	geom := Constant(geomJSON)
	coll := filteredCollection(collectionID, geom, q.Start, q.End, q.CloudThreshold)

	median := Invoke("reduce.median", map[string]ValueNode{
		"collection": coll,
	})

	clipRegion := Invoke("Geometry.bounds", map[string]ValueNode{
		"geometry": Invoke("Geometry.buffer", map[string]ValueNode{
			"geometry": geom,
			"distance": Constant(q.BufferMeters),
		}),
	})

	var visualized ValueNode
	if q.Layer == domain.LayerNDVI {
		ndvi := Invoke("Image.normalizedDifference", map[string]ValueNode{
			"input":     median,
			"bandNames": Constant([]string{"B8", "B4"}),
		})
		visualized = Invoke("Image.visualize", map[string]ValueNode{
			"image": Invoke("Image.clip", map[string]ValueNode{
				"input":    ndvi,
				"geometry": clipRegion,
			}),
			"min":     Constant([]float64{0}),
			"max":     Constant([]float64{1}),
			"palette": Constant([]string{"white", "green"}),
		})
	} else {
		rgb := Invoke("Image.select", map[string]ValueNode{
			"input":         median,
			"bandSelectors": Constant([]string{"B4", "B3", "B2"}),
		})
		visualized = Invoke("Image.visualize", map[string]ValueNode{
			"image": Invoke("Image.clip", map[string]ValueNode{
				"input":    rgb,
				"geometry": clipRegion,
			}),
			"min": Constant([]float64{0}),
			"max": Constant([]float64{3000}),
		})
	}

	return g.finish(visualized)
}

// seriesExpression aggregates one property array over the filtered
// collection. Each image is annotated with its region-mean NDVI and its
// acquisition date, the collection is sorted by acquisition time and capped,
// then the named property is pulled out as a flat list. Called once for
// "date" and once for "mean_ndvi"; the two lists are zipped locally.
func seriesExpression(collectionID string, q domain.SeriesQuery, geomJSON map[string]interface{}, property string) Expression {
	g := newGraph()

	geom := Constant(geomJSON)
	coll := filteredCollection(collectionID, geom, q.Start, q.End, q.CloudThreshold)

	img := ArgRef("img")

	ndvi := Invoke("Image.rename", map[string]ValueNode{
		"input": Invoke("Image.normalizedDifference", map[string]ValueNode{
			"input":     img,
			"bandNames": Constant([]string{"B8", "B4"}),
		}),
		"names": Constant([]string{"NDVI"}),
	})

	meanNDVI := Invoke("Dictionary.get", map[string]ValueNode{
		"dictionary": Invoke("Image.reduceRegion", map[string]ValueNode{
			"image":    ndvi,
			"reducer":  Invoke("Reducer.mean", map[string]ValueNode{}),
			"geometry": geom,
			"scale":    Constant(q.ScaleMeters),
		}),
		"key": Constant("NDVI"),
	})

	date := Invoke("Date.format", map[string]ValueNode{
		"date": Invoke("Date", map[string]ValueNode{
			"value": Invoke("Element.get", map[string]ValueNode{
				"object":   img,
				"property": Constant("system:time_start"),
			}),
		}),
		"format": Constant("YYYY-MM-dd"),
	})

	annotated := Invoke("Element.set", map[string]ValueNode{
		"object": Invoke("Element.set", map[string]ValueNode{
			"object": img,
			"key":    Constant("mean_ndvi"),
			"value":  meanNDVI,
		}),
		"key":   Constant("date"),
		"value": date,
	})

	mapped := Invoke("Collection.map", map[string]ValueNode{
		"collection":    coll,
		"baseAlgorithm": g.lambda("img", annotated),
	})

	limited := Invoke("Collection.limit", map[string]ValueNode{
		"collection": mapped,
		"limit":      Constant(domain.MaxObservations),
		"key":        Constant("system:time_start"),
		"ascending":  Constant(true),
	})

	return g.finish(Invoke("AggregateFeatureCollection.array", map[string]ValueNode{
		"collection": limited,
		"property":   Constant(property),
	}))
}
