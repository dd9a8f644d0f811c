package main

import (
	"fmt"
	"io"

	"ecogw/internal/domain/models"
)

// dayLabel names offset 0 "J0" and the following days "J+n".
func dayLabel(offset int) string {
	if offset == 0 {
		return "J0"
	}
	return fmt.Sprintf("J+%d", offset)
}

// renderWindow prints one line per day, with the advisory message when present.
func renderWindow(w io.Writer, days []models.WindowDay, withMessage bool) {
	for _, d := range days {
		line := fmt.Sprintf("%-4s (%02d/%02d/%04d) color: %s",
			dayLabel(d.Offset), d.Date.Day, int(d.Date.Month), d.Date.Year, d.Color)
		if withMessage {
			line += fmt.Sprintf(", message: %q", d.Message)
		}
		fmt.Fprintln(w, line)
	}
}

// renderRegisters prints big-endian register bytes as "addr: value".
func renderRegisters(w io.Writer, start uint16, b []byte) {
	for i := 0; i+1 < len(b); i += 2 {
		fmt.Fprintf(w, "%5d: %d\n", int(start)+i/2, uint16(b[i])<<8|uint16(b[i+1]))
	}
}
