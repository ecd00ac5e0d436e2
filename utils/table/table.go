/*
 * Copyright 2025 The RuleGo Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package table

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/rulego/udfsql/types"
)

// minWidth is the minimum width of a column
const minWidth = 4

// PrintTable prints query results as a bordered table followed by the row
// count. Columns keep the order given; NULL prints as "NULL".
func PrintTable(w io.Writer, columns []string, rows [][]types.Value) {
	if len(columns) == 0 {
		fmt.Fprintf(w, "(%d rows)\n", len(rows))
		return
	}

	// Calculate maximum width for each column
	colWidths := make([]int, len(columns))
	for i, col := range columns {
		colWidths[i] = max(runewidth.StringWidth(col), minWidth)
		for _, row := range rows {
			if i < len(row) {
				colWidths[i] = max(colWidths[i], runewidth.StringWidth(FormatValue(row[i])))
			}
		}
	}

	PrintTableBorder(w, colWidths)
	printRow(w, colWidths, columns)
	PrintTableBorder(w, colWidths)

	cells := make([]string, len(columns))
	for _, row := range rows {
		for i := range cells {
			cells[i] = ""
			if i < len(row) {
				cells[i] = FormatValue(row[i])
			}
		}
		printRow(w, colWidths, cells)
	}
	PrintTableBorder(w, colWidths)

	fmt.Fprintf(w, "(%d rows)\n", len(rows))
}

// PrintTableBorder prints table border
func PrintTableBorder(w io.Writer, columnWidths []int) {
	var sb strings.Builder
	sb.WriteString("+")
	for _, width := range columnWidths {
		sb.WriteString(strings.Repeat("-", width+2))
		sb.WriteString("+")
	}
	fmt.Fprintln(w, sb.String())
}

// FormatValue renders a cell. Text is printed without quotes.
func FormatValue(v types.Value) string {
	if v.IsNull() {
		return "NULL"
	}
	return v.String()
}

func printRow(w io.Writer, widths []int, cells []string) {
	var sb strings.Builder
	sb.WriteString("|")
	for i, cell := range cells {
		sb.WriteString(" ")
		sb.WriteString(runewidth.FillRight(cell, widths[i]))
		sb.WriteString(" |")
	}
	fmt.Fprintln(w, sb.String())
}
