package netgraph

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
)

// Demand is one (source, destination, bandwidth) row of the legacy
// DemandData deck.
type Demand struct {
	ID          int
	Source      int
	Destination int
	DemandMbps  float64
}

// LoadResult bundles the graph produced from a CSV deck with the demand
// rows carried alongside it, mirroring the reference implementation's
// GraphService.load_from_csv / get_demands split.
type LoadResult struct {
	Graph   *Graph
	Demands []Demand
}

// LoadFromCSV reads NodeData.csv, EdgeData.csv and DemandData.csv from
// dataDir. Field order and header names follow §6 of the specification:
//
//	NodeData:   node_id, processing_delay, reliability
//	EdgeData:   u, v, bandwidth, delay, reliability
//	DemandData: id, source, destination, demand_mbps
//
// The decimal separator is '.'; a ',' decimal separator is also
// accepted on parse for round-trip compatibility with the legacy deck.
func LoadFromCSV(dataDir string) (*LoadResult, error) {
	nodeFile := filepath.Join(dataDir, "NodeData.csv")
	edgeFile := filepath.Join(dataDir, "EdgeData.csv")
	demandFile := filepath.Join(dataDir, "DemandData.csv")

	g := New()
	if err := loadNodes(g, nodeFile); err != nil {
		return nil, fmt.Errorf("loading nodes from %s: %w", nodeFile, err)
	}
	if err := loadEdges(g, edgeFile); err != nil {
		return nil, fmt.Errorf("loading edges from %s: %w", edgeFile, err)
	}
	demands, err := loadDemands(demandFile)
	if err != nil {
		return nil, fmt.Errorf("loading demands from %s: %w", demandFile, err)
	}

	log.WithFields(log.Fields{
		"nodes": g.NumNodes(), "edges": g.NumEdges(), "demands": len(demands),
	}).Info("loaded graph from CSV deck")

	return &LoadResult{Graph: g, Demands: demands}, nil
}

func parseDecimal(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", ".")
	return strconv.ParseFloat(s, 64)
}

func readCSVLines(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var rows [][]string
	scanner := bufio.NewScanner(f)
	first := true
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if first {
			first = false
			continue // skip header
		}
		sep := ","
		if strings.Count(line, ";") > strings.Count(line, ",") {
			sep = ";"
		}
		rows = append(rows, strings.Split(line, sep))
	}
	return rows, scanner.Err()
}

func loadNodes(g *Graph, path string) error {
	rows, err := readCSVLines(path)
	if err != nil {
		return err
	}
	for _, parts := range rows {
		if len(parts) < 3 {
			continue
		}
		id, err := strconv.Atoi(strings.TrimSpace(parts[0]))
		if err != nil {
			return fmt.Errorf("parsing node_id %q: %w", parts[0], err)
		}
		delay, err := parseDecimal(parts[1])
		if err != nil {
			return fmt.Errorf("parsing processing_delay %q: %w", parts[1], err)
		}
		rel, err := parseDecimal(parts[2])
		if err != nil {
			return fmt.Errorf("parsing reliability %q: %w", parts[2], err)
		}
		g.AddNode(id, Node{ProcessingDelay: delay, Reliability: rel})
	}
	return nil
}

func loadEdges(g *Graph, path string) error {
	rows, err := readCSVLines(path)
	if err != nil {
		return err
	}
	for _, parts := range rows {
		if len(parts) < 5 {
			continue
		}
		u, err := strconv.Atoi(strings.TrimSpace(parts[0]))
		if err != nil {
			return fmt.Errorf("parsing u %q: %w", parts[0], err)
		}
		v, err := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil {
			return fmt.Errorf("parsing v %q: %w", parts[1], err)
		}
		bw, err := parseDecimal(parts[2])
		if err != nil {
			return fmt.Errorf("parsing bandwidth %q: %w", parts[2], err)
		}
		delay, err := parseDecimal(parts[3])
		if err != nil {
			return fmt.Errorf("parsing delay %q: %w", parts[3], err)
		}
		rel, err := parseDecimal(parts[4])
		if err != nil {
			return fmt.Errorf("parsing reliability %q: %w", parts[4], err)
		}
		g.AddEdge(u, v, Edge{Bandwidth: bw, Delay: delay, Reliability: rel})
	}
	return nil
}

func loadDemands(path string) ([]Demand, error) {
	rows, err := readCSVLines(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	demands := make([]Demand, 0, len(rows))
	for _, parts := range rows {
		if len(parts) < 4 {
			continue
		}
		id, err := strconv.Atoi(strings.TrimSpace(parts[0]))
		if err != nil {
			return nil, fmt.Errorf("parsing id %q: %w", parts[0], err)
		}
		src, err := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil {
			return nil, fmt.Errorf("parsing source %q: %w", parts[1], err)
		}
		dst, err := strconv.Atoi(strings.TrimSpace(parts[2]))
		if err != nil {
			return nil, fmt.Errorf("parsing destination %q: %w", parts[2], err)
		}
		demand, err := parseDecimal(parts[3])
		if err != nil {
			return nil, fmt.Errorf("parsing demand_mbps %q: %w", parts[3], err)
		}
		demands = append(demands, Demand{ID: id, Source: src, Destination: dst, DemandMbps: demand})
	}
	return demands, nil
}
