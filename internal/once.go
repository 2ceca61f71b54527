package livedash

import (
	"context"
	"fmt"
	"io"
)

// RunOnce loads history, performs a single refresh and prints the dashboard
// followed by a table of every metric. The refresh error is returned after printing.
func RunOnce(ctx context.Context, s *Session, w io.Writer, width int) error {
	_ = s.LoadHistory(ctx)
	err := s.Refresh(ctx)

	if _, werr := fmt.Fprintln(w, RenderDocument(s, width, -1)); werr != nil {
		return werr
	}
	if table := MetricsTable(s, 0); table != "" {
		if _, werr := fmt.Fprintln(w, table); werr != nil {
			return werr
		}
	}
	return err
}

// MetricsTable lists each chart with its current value, type and number of points
func MetricsTable(s *Session, maxHeight int) string {
	doc := s.Document()
	var rows [][]string
	for _, h := range s.Charts().Handles() {
		value := ""
		if el := doc.GetElementByID(statValueID(StatID(h.Name))); el != nil {
			value = el.Text()
		}
		points := 0
		if data := h.Object.Data(); len(data.Datasets) > 0 {
			points = len(data.Datasets[0].Values)
		}
		rows = append(rows, []string{h.Name, value, string(h.Type), fmt.Sprint(points)})
	}
	return NewWrapTable().
		Headers("Metric", "Value", "Chart", "Points").
		AlignRight(1, 3).
		MaxHeight(maxHeight).
		Rows(rows...).
		Render()
}
