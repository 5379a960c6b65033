package file

import (
	"encoding/xml"
	"fmt"
	"os"
	"strconv"

	"github.com/wfiftyfour/graphrag/pkg/common"
)

// GraphML serialization for the relationship graph. Nodes carry only their
// id (entity attributes live in the entity metadata file); edges carry the
// relationship label, description and weight as data keys.

type graphmlDoc struct {
	XMLName xml.Name     `xml:"graphml"`
	Xmlns   string       `xml:"xmlns,attr"`
	Keys    []graphmlKey `xml:"key"`
	Graph   graphmlGraph `xml:"graph"`
}

type graphmlKey struct {
	ID   string `xml:"id,attr"`
	For  string `xml:"for,attr"`
	Name string `xml:"attr.name,attr"`
	Type string `xml:"attr.type,attr"`
}

type graphmlGraph struct {
	EdgeDefault string        `xml:"edgedefault,attr"`
	Nodes       []graphmlNode `xml:"node"`
	Edges       []graphmlEdge `xml:"edge"`
}

type graphmlNode struct {
	ID string `xml:"id,attr"`
}

type graphmlEdge struct {
	Source string         `xml:"source,attr"`
	Target string         `xml:"target,attr"`
	Data   []graphmlDatum `xml:"data"`
}

type graphmlDatum struct {
	Key   string `xml:"key,attr"`
	Value string `xml:",chardata"`
}

const (
	keyLabel       = "d0"
	keyDescription = "d1"
	keyWeight      = "d2"
)

func writeGraphML(path string, relationships []common.Relationship) error {
	doc := graphmlDoc{
		Xmlns: "http://graphml.graphdrawing.org/xmlns",
		Keys: []graphmlKey{
			{ID: keyLabel, For: "edge", Name: "relationship", Type: "string"},
			{ID: keyDescription, For: "edge", Name: "description", Type: "string"},
			{ID: keyWeight, For: "edge", Name: "weight", Type: "double"},
		},
		Graph: graphmlGraph{EdgeDefault: "undirected"},
	}

	seen := map[string]bool{}
	for _, rel := range relationships {
		for _, name := range []string{rel.Source, rel.Target} {
			if !seen[name] {
				seen[name] = true
				doc.Graph.Nodes = append(doc.Graph.Nodes, graphmlNode{ID: name})
			}
		}
		doc.Graph.Edges = append(doc.Graph.Edges, graphmlEdge{
			Source: rel.Source,
			Target: rel.Target,
			Data: []graphmlDatum{
				{Key: keyLabel, Value: rel.Label},
				{Key: keyDescription, Value: rel.Description},
				{Key: keyWeight, Value: strconv.FormatFloat(rel.Weight, 'g', -1, 64)},
			},
		})
	}

	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal graphml: %w", err)
	}
	data := append([]byte(xml.Header), out...)
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

func readGraphML(path string) ([]common.Relationship, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var doc graphmlDoc
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse graphml: %w", err)
	}

	relationships := make([]common.Relationship, 0, len(doc.Graph.Edges))
	for _, edge := range doc.Graph.Edges {
		rel := common.Relationship{Source: edge.Source, Target: edge.Target, Weight: 1}
		for _, d := range edge.Data {
			switch d.Key {
			case keyLabel:
				rel.Label = d.Value
			case keyDescription:
				rel.Description = d.Value
			case keyWeight:
				w, err := strconv.ParseFloat(d.Value, 64)
				if err != nil {
					return nil, fmt.Errorf("edge %s-%s has invalid weight %q", edge.Source, edge.Target, d.Value)
				}
				rel.Weight = w
			}
		}
		relationships = append(relationships, rel)
	}
	return relationships, nil
}
