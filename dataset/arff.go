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
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/juju/errors"
	"github.com/samber/lo"
)

// ReadARFF parses a dense ARFF file. Numeric (numeric, real, integer) and nominal
// attributes are supported. The last attribute becomes the class attribute.
func ReadARFF(r io.Reader) (*Dataset, error) {
	var (
		relation   string
		attributes []*Attribute
		ds         *Dataset
	)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "%") {
			continue
		}
		if ds == nil {
			keyword, rest := cutKeyword(line)
			switch strings.ToLower(keyword) {
			case "@relation":
				name, _, err := nextToken(rest)
				if err != nil {
					return nil, errors.Annotatef(ErrMalformed, "line %d: %v", lineNo, err)
				}
				relation = name
			case "@attribute":
				attr, err := parseAttribute(rest)
				if err != nil {
					return nil, errors.Annotatef(ErrMalformed, "line %d: %v", lineNo, err)
				}
				attributes = append(attributes, attr)
			case "@data":
				if len(attributes) == 0 {
					return nil, errors.Annotatef(ErrMalformed, "line %d: no attributes declared", lineNo)
				}
				ds = New(relation, attributes)
			default:
				return nil, errors.Annotatef(ErrMalformed, "line %d: unexpected %q", lineNo, keyword)
			}
			continue
		}
		if strings.HasPrefix(line, "{") {
			return nil, errors.Annotatef(ErrMalformed, "line %d: sparse instances are not supported", lineNo)
		}
		fields, err := splitFields(line)
		if err != nil {
			return nil, errors.Annotatef(ErrMalformed, "line %d: %v", lineNo, err)
		}
		if len(fields) != len(attributes) {
			return nil, errors.Annotatef(ErrMalformed, "line %d has %d values, expected %d", lineNo, len(fields), len(attributes))
		}
		inst := make(Instance, len(fields))
		for j, f := range fields {
			if f.quoted {
				inst[j], err = attributes[j].parseQuoted(f.text)
			} else {
				inst[j], err = attributes[j].Parse(f.text)
			}
			if err != nil {
				return nil, errors.Annotatef(ErrMalformed, "line %d: %v", lineNo, err)
			}
		}
		if err = ds.Add(inst); err != nil {
			return nil, errors.Trace(err)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Annotate(ErrMalformed, err.Error())
	}
	if ds == nil {
		return nil, errors.Annotate(ErrMalformed, "missing @data section")
	}
	if err := ds.SetClassIndex(len(attributes) - 1); err != nil {
		return nil, errors.Trace(err)
	}
	return ds, nil
}

// WriteARFF writes the dataset in dense ARFF format.
func WriteARFF(w io.Writer, ds *Dataset) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "@relation %s\n\n", quoteARFF(ds.relation)); err != nil {
		return errors.Trace(err)
	}
	for _, attr := range ds.attributes {
		var kind string
		if attr.IsNominal() {
			kind = "{" + strings.Join(lo.Map(attr.Values(), func(v string, _ int) string { return quoteARFF(v) }), ",") + "}"
		} else {
			kind = "numeric"
		}
		if _, err := fmt.Fprintf(bw, "@attribute %s %s\n", quoteARFF(attr.Name()), kind); err != nil {
			return errors.Trace(err)
		}
	}
	if _, err := bw.WriteString("\n@data\n"); err != nil {
		return errors.Trace(err)
	}
	for _, inst := range ds.instances {
		fields := make([]string, len(inst))
		for j, v := range inst {
			if IsMissing(v) || ds.attributes[j].IsNumeric() {
				fields[j] = ds.attributes[j].Format(v)
			} else {
				fields[j] = quoteARFF(ds.attributes[j].Format(v))
			}
		}
		if _, err := bw.WriteString(strings.Join(fields, ",") + "\n"); err != nil {
			return errors.Trace(err)
		}
	}
	return errors.Trace(bw.Flush())
}

func parseAttribute(rest string) (*Attribute, error) {
	name, rest, err := nextToken(rest)
	if err != nil {
		return nil, err
	}
	rest = strings.TrimSpace(rest)
	if strings.HasPrefix(rest, "{") {
		end := strings.LastIndex(rest, "}")
		if end < 0 {
			return nil, fmt.Errorf("unterminated value list of attribute %q", name)
		}
		fields, err := splitFields(rest[1:end])
		if err != nil {
			return nil, err
		}
		return NewNominalAttribute(name, lo.Map(fields, func(f field, _ int) string { return f.text })...), nil
	}
	switch kind, _ := cutKeyword(rest); strings.ToLower(kind) {
	case "numeric", "real", "integer":
		return NewNumericAttribute(name), nil
	default:
		return nil, fmt.Errorf("unsupported type %q of attribute %q", kind, name)
	}
}

// parseQuoted parses a quoted value, which is never the missing marker.
func (a *Attribute) parseQuoted(s string) (float64, error) {
	if a.IsNominal() {
		i, ok := a.IndexOf(s)
		if !ok {
			return 0, fmt.Errorf("unknown value %q of attribute %q", s, a.name)
		}
		return float64(i), nil
	}
	return a.Parse(s)
}

func cutKeyword(line string) (string, string) {
	i := strings.IndexFunc(line, unicode.IsSpace)
	if i < 0 {
		return line, ""
	}
	return line[:i], strings.TrimSpace(line[i:])
}

// nextToken reads one possibly quoted token and returns it with the remaining text.
func nextToken(s string) (string, string, error) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	if s == "" {
		return "", "", errors.New("missing token")
	}
	if s[0] == '\'' || s[0] == '"' {
		text, n, err := unquote(s)
		if err != nil {
			return "", "", err
		}
		return text, s[n:], nil
	}
	i := strings.IndexFunc(s, unicode.IsSpace)
	if i < 0 {
		return s, "", nil
	}
	return s[:i], s[i:], nil
}

type field struct {
	text   string
	quoted bool
}

// splitFields splits a comma separated list whose items may be quoted with ' or ".
func splitFields(s string) ([]field, error) {
	var fields []field
	for {
		s = strings.TrimLeftFunc(s, unicode.IsSpace)
		var f field
		if s != "" && (s[0] == '\'' || s[0] == '"') {
			text, n, err := unquote(s)
			if err != nil {
				return nil, err
			}
			f = field{text: text, quoted: true}
			s = strings.TrimLeftFunc(s[n:], unicode.IsSpace)
		} else {
			i := strings.IndexByte(s, ',')
			if i < 0 {
				i = len(s)
			}
			f = field{text: strings.TrimSpace(s[:i])}
			s = s[i:]
		}
		fields = append(fields, f)
		if s == "" {
			return fields, nil
		}
		if s[0] != ',' {
			return nil, fmt.Errorf("unexpected %q after value", s)
		}
		s = s[1:]
	}
}

// unquote decodes a quoted prefix of s and returns the text and the number of bytes consumed.
func unquote(s string) (string, int, error) {
	quote := s[0]
	var builder strings.Builder
	for i := 1; i < len(s); i++ {
		switch c := s[i]; {
		case c == '\\' && i+1 < len(s):
			i++
			switch s[i] {
			case 'n':
				builder.WriteByte('\n')
			case 'r':
				builder.WriteByte('\r')
			case 't':
				builder.WriteByte('\t')
			default:
				builder.WriteByte(s[i])
			}
		case c == quote:
			return builder.String(), i + 1, nil
		default:
			builder.WriteByte(c)
		}
	}
	return "", 0, errors.New("unterminated quoted string")
}

// quoteARFF quotes s with single quotes when it would not survive as a bare token.
func quoteARFF(s string) string {
	if s != "" && s != MissingToken && !strings.ContainsAny(s, " \t\n\r,'\"{}%\\") {
		return s
	}
	var builder strings.Builder
	builder.WriteByte('\'')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '\'', '\\':
			builder.WriteByte('\\')
			builder.WriteByte(c)
		case '\n':
			builder.WriteString("\\n")
		case '\r':
			builder.WriteString("\\r")
		case '\t':
			builder.WriteString("\\t")
		default:
			builder.WriteByte(c)
		}
	}
	builder.WriteByte('\'')
	return builder.String()
}
