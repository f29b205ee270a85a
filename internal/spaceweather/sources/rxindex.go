package sources

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/i474232898/aurora-bot/internal/observability"
	"github.com/i474232898/aurora-bot/internal/spaceweather"
)

const (
	rxIndexURL     = "https://aurorasnow.fmi.fi/public_service/magforecast_en.html"
	rxCellsPerRow  = 4
	DefaultStation = "Tartu"
)

var errStationNotFound = errors.New("station row not found")

// RxIndexSource implements spaceweather.RegionalSource by scraping the FMI
// magnetometer forecast table for one station.
type RxIndexSource struct {
	httpSource
	baseURL string
	station string
}

func NewRxIndexSource(client *http.Client, station string, logger *slog.Logger, metrics *observability.Metrics) *RxIndexSource {
	if station == "" {
		station = DefaultStation
	}
	return &RxIndexSource{
		httpSource: newHTTPSource("regional", client, logger, metrics),
		baseURL:    rxIndexURL,
		station:    station,
	}
}

func (s *RxIndexSource) RegionalIndex(ctx context.Context) (spaceweather.RegionalIndexReading, bool) {
	body, err := s.get(ctx, s.baseURL)
	if err != nil {
		s.unavailable(err)
		return spaceweather.RegionalIndexReading{}, false
	}

	reading, err := parseStationRow(bytes.NewReader(body), s.station)
	if err != nil {
		s.unavailable(err)
		return spaceweather.RegionalIndexReading{}, false
	}

	s.available()
	return reading, true
}

// parseStationRow returns the first table row mentioning station that has
// exactly four cells: label, current, next-hour minimum, next-hour maximum.
func parseStationRow(r io.Reader, station string) (spaceweather.RegionalIndexReading, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return spaceweather.RegionalIndexReading{}, fmt.Errorf("parse document: %w", err)
	}

	for _, row := range findAll(doc, atom.Tr) {
		if !strings.Contains(textContent(row), station) {
			continue
		}
		cells := findAll(row, atom.Td)
		if len(cells) != rxCellsPerRow {
			continue
		}
		return readingFromCells(cells), nil
	}

	return spaceweather.RegionalIndexReading{}, fmt.Errorf("%w: %s", errStationNotFound, station)
}

func readingFromCells(cells []*html.Node) spaceweather.RegionalIndexReading {
	readings := make(map[spaceweather.Slot]spaceweather.SlotReading, len(spaceweather.Slots))
	for i, slot := range spaceweather.Slots {
		cell := cells[i+1]
		readings[slot] = spaceweather.SlotReading{
			Value:    strings.TrimSpace(textContent(cell)),
			Severity: spaceweather.SeverityFromColor(attr(cell, "bgcolor")),
		}
	}

	return spaceweather.RegionalIndexReading{
		Station:  strings.TrimSpace(textContent(cells[0])),
		Readings: readings,
	}
}

// findAll returns every descendant element of n with the given tag, in document order.
func findAll(n *html.Node, tag atom.Atom) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && c.DataAtom == tag {
				out = append(out, c)
			}
			walk(c)
		}
	}
	walk(n)
	return out
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			sb.WriteString(node.Data)
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}
