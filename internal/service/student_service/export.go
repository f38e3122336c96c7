package student_service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/anvaygupta1940/Student-Progress-Management/internal/spm_errors"
)

var csvHeader = []string{
	"Name", "Email", "Phone", "Codeforces Handle", "Current Rating", "Max Rating", "Last Synced",
}

// ExportCSV writes the active students sorted by name as CSV.
func (s *StudentService) ExportCSV(ctx context.Context, w io.Writer) error {
	students, err := s.List(ctx)
	if err != nil {
		return err
	}
	slices.SortStableFunc(students, func(a, b Student) int {
		return strings.Compare(a.Name, b.Name)
	})

	cw := csv.NewWriter(w)
	if err = cw.Write(csvHeader); err != nil {
		return fmt.Errorf("%w, cannot write csv header, %w", spm_errors.ErrInternal, err)
	}

	for _, st := range students {
		lastSynced := "Never"
		if st.LastSynced != nil {
			lastSynced = st.LastSynced.UTC().Format("2006-01-02")
		}
		row := []string{
			st.Name,
			st.Email,
			st.Phone,
			st.CodeforcesHandle,
			strconv.Itoa(int(st.CurrentRating)),
			strconv.Itoa(int(st.MaxRating)),
			lastSynced,
		}
		if err = cw.Write(row); err != nil {
			return fmt.Errorf("%w, cannot write csv row, %w", spm_errors.ErrInternal, err)
		}
	}

	cw.Flush()
	if err = cw.Error(); err != nil {
		return fmt.Errorf("%w, cannot flush csv, %w", spm_errors.ErrInternal, err)
	}
	return nil
}
