// Copyright 2026 crossfold Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package dataset

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/juju/errors"
	"github.com/samber/lo"
)

var csvMissing = mapset.NewSet(MissingToken, "")

// ReadCSV parses a comma separated file whose first row names the attributes. A column
// is numeric if every present value parses as a number, nominal otherwise with values
// in first appearance order. The last column becomes the class attribute.
func ReadCSV(r io.Reader, relation string) (*Dataset, error) {
	var (
		header []string
		rows   [][]string
		err    error
	)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	readErr := ReadLines(sc, ",", func(line int, fields []string) bool {
		fields = lo.Map(fields, func(s string, _ int) string { return strings.TrimSpace(s) })
		if header == nil {
			header = fields
			return true
		}
		if len(fields) == 1 && fields[0] == "" {
			// blank line
			return true
		}
		if len(fields) != len(header) {
			err = errors.Annotatef(ErrMalformed, "line %d has %d fields, expected %d", line+1, len(fields), len(header))
			return false
		}
		rows = append(rows, fields)
		return true
	})
	if readErr != nil {
		return nil, errors.Annotate(ErrMalformed, readErr.Error())
	}
	if err != nil {
		return nil, err
	}
	if len(header) == 0 {
		return nil, errors.Annotate(ErrMalformed, "missing header")
	}

	attributes := make([]*Attribute, len(header))
	for j, name := range header {
		numeric := true
		dict := NewFreqDict()
		for _, row := range rows {
			if csvMissing.Contains(row[j]) {
				continue
			}
			dict.Id(row[j])
			if _, err := strconv.ParseFloat(row[j], 64); err != nil {
				numeric = false
			}
		}
		if numeric {
			attributes[j] = NewNumericAttribute(name)
		} else {
			attributes[j] = &Attribute{name: name, kind: Nominal, values: dict}
		}
	}

	ds := New(relation, attributes)
	for i, row := range rows {
		inst := make(Instance, len(row))
		for j, field := range row {
			if csvMissing.Contains(field) {
				inst[j] = Missing()
				continue
			}
			v, err := attributes[j].Parse(field)
			if err != nil {
				return nil, errors.Annotatef(ErrMalformed, "row %d: %v", i+1, err)
			}
			inst[j] = v
		}
		if err := ds.Add(inst); err != nil {
			return nil, errors.Trace(err)
		}
	}
	if err := ds.SetClassIndex(len(attributes) - 1); err != nil {
		return nil, errors.Trace(err)
	}
	return ds, nil
}

// WriteCSV writes the dataset with a header row. Missing values are written as "?".
func WriteCSV(w io.Writer, ds *Dataset) error {
	bw := bufio.NewWriter(w)
	header := lo.Map(ds.attributes, func(a *Attribute, _ int) string { return Escape(a.Name()) })
	if _, err := bw.WriteString(strings.Join(header, ",") + "\n"); err != nil {
		return errors.Trace(err)
	}
	for _, inst := range ds.instances {
		fields := make([]string, len(inst))
		for j, v := range inst {
			fields[j] = Escape(ds.attributes[j].Format(v))
		}
		if _, err := bw.WriteString(strings.Join(fields, ",") + "\n"); err != nil {
			return errors.Trace(err)
		}
	}
	return errors.Trace(bw.Flush())
}

// Escape text for csv.
func Escape(text string) string {
	if !strings.ContainsAny(text, ",\"\n\r") {
		return text
	}
	builder := strings.Builder{}
	builder.WriteRune('"')
	for _, c := range text {
		if c == '"' {
			builder.WriteString("\"\"")
		} else {
			builder.WriteRune(c)
		}
	}
	builder.WriteRune('"')
	return builder.String()
}

// ReadLines parse fields of each line for csv file.
func ReadLines(sc *bufio.Scanner, sep string, handler func(int, []string) bool) error {
	lineCount := 0               // line number of current position
	fields := make([]string, 0)  // fields for current line
	builder := strings.Builder{} // string builder for current field
	quoted := false              // whether current position in quote
	for sc.Scan() {
		line := []rune(sc.Text())
		if quoted {
			builder.WriteString("\n")
		}
		for i := 0; i < len(line); i++ {
			if string(line[i]) == sep && !quoted {
				// end of field
				fields = append(fields, builder.String())
				builder.Reset()
			} else if line[i] == '"' {
				if quoted {
					if i+1 >= len(line) || line[i+1] != '"' {
						quoted = false
					} else {
						i++
						builder.WriteRune('"')
					}
				} else {
					quoted = true
				}
			} else if line[i] != '\r' || i+1 < len(line) {
				builder.WriteRune(line[i])
			}
		}
		// end of line
		if !quoted {
			fields = append(fields, builder.String())
			builder.Reset()
			if !handler(lineCount, fields) {
				return nil
			}
			fields = []string{}
		}
		lineCount++
	}
	if quoted {
		return errors.New("unterminated quoted field")
	}
	return sc.Err()
}
