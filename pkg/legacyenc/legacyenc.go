package legacyenc

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/jacksonlee411/jobdesk/pkg/selection"
)

// Kind discriminates the textual forms an association column has been
// persisted in over time.
type Kind string

const (
	KindEmpty          Kind = "empty"
	KindJSONArray      Kind = "json_array"
	KindCommaSeparated Kind = "comma_separated"
	KindSingleScalar   Kind = "single_scalar"
)

type Encoding struct {
	Kind Kind
	Raw  string
}

func Empty() Encoding { return Encoding{Kind: KindEmpty} }

func JSONArray(s string) Encoding { return Encoding{Kind: KindJSONArray, Raw: s} }

func CommaSeparated(s string) Encoding { return Encoding{Kind: KindCommaSeparated, Raw: s} }

func SingleScalar(s string) Encoding { return Encoding{Kind: KindSingleScalar, Raw: s} }

func (e Encoding) String() string { return e.Raw }

func (e Encoding) IsEmpty() bool {
	return e.Kind == KindEmpty || strings.TrimSpace(e.Raw) == ""
}

// Sniff classifies persisted column text. JSON-quoted text is routed through
// the JSON decoder so the quotes are not kept as part of the identifier.
func Sniff(text string) Encoding {
	trimmed := strings.TrimSpace(text)
	switch {
	case trimmed == "":
		return Empty()
	case strings.HasPrefix(trimmed, "["), strings.HasPrefix(trimmed, `"`):
		return JSONArray(text)
	case strings.Contains(trimmed, ","):
		return CommaSeparated(text)
	default:
		return SingleScalar(text)
	}
}

// Decode parses raw into an ordered, duplicate-free identifier list. It never
// fails: malformed input degrades to a best-effort result, described by the
// returned Report.
func Decode(raw Encoding) ([]selection.ID, Report) {
	var rep Report
	rep.Kind = raw.Kind
	switch raw.Kind {
	case KindEmpty, KindJSONArray, KindCommaSeparated, KindSingleScalar:
	case "":
		raw = Sniff(raw.Raw)
	default:
		rep.note(ReasonUnknownKind, string(raw.Kind))
		raw = Sniff(raw.Raw)
	}

	var ids []selection.ID
	switch raw.Kind {
	case KindJSONArray:
		ids = decodeJSONArray(raw.Raw, &rep)
	case KindCommaSeparated:
		ids = decodeCommaSeparated(raw.Raw, false)
	case KindSingleScalar:
		ids = decodeSingleScalar(raw.Raw)
	}

	out := dedupe(ids)
	if len(out) != len(ids) {
		rep.note(ReasonDuplicates, "")
	}
	rep.Decoded = raw.Kind
	if rep.FallbackKind != "" {
		rep.Decoded = rep.FallbackKind
	}
	return out, rep
}

// DecodeSet decodes raw and reconciles it with a separately stored primary
// field: the primary is always first after decoding.
func DecodeSet(raw Encoding, primaryField string, trackPrimary bool) (selection.Set, Report) {
	ids, rep := Decode(raw)
	return selection.Reconcile(ids, selection.ID(primaryField), trackPrimary), rep
}

// Encode renders members in order as a JSON array of strings.
func Encode(s selection.Set) Encoding {
	return JSONArray(marshalIDs(s.Members()))
}

// EncodePrimaryFirst renders members as a JSON array with the primary first,
// for single-list representations that carry no separate primary field.
func EncodePrimaryFirst(s selection.Set) Encoding {
	return JSONArray(marshalIDs(s.PrimaryFirst()))
}

func marshalIDs(ids []selection.ID) string {
	if len(ids) == 0 {
		return "[]"
	}
	strs := make([]string, 0, len(ids))
	for _, id := range ids {
		strs = append(strs, string(id))
	}
	b, err := json.Marshal(strs)
	if err != nil {
		return "[]"
	}
	return string(b)
}

func decodeJSONArray(s string, rep *Report) []selection.ID {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil
	}

	dec := json.NewDecoder(strings.NewReader(trimmed))
	dec.UseNumber()
	var v any
	err := dec.Decode(&v)
	if err == nil && strings.TrimSpace(trimmed[dec.InputOffset():]) != "" {
		err = errTrailingData
	}
	if err != nil {
		if strings.Contains(trimmed, ",") {
			rep.fallback(KindCommaSeparated, ReasonInvalidJSON, err.Error())
			return decodeCommaSeparated(trimmed, true)
		}
		rep.fallback(KindSingleScalar, ReasonInvalidJSON, err.Error())
		return decodeSingleScalar(stripDecoration(trimmed))
	}

	switch t := v.(type) {
	case []any:
		out := make([]selection.ID, 0, len(t))
		for _, el := range t {
			if _, isNum := el.(json.Number); isNum {
				rep.Coerced++
			}
			id, ok := scalarID(el)
			if !ok {
				rep.note(ReasonDroppedElement, describe(el))
				continue
			}
			out = append(out, id)
		}
		return out
	case nil:
		return nil
	default:
		id, ok := scalarID(t)
		if !ok {
			rep.note(ReasonDroppedElement, describe(t))
			return nil
		}
		rep.fallback(KindSingleScalar, ReasonJSONScalar, "")
		return []selection.ID{id}
	}
}

func decodeCommaSeparated(s string, lenient bool) []selection.ID {
	if lenient {
		s = strings.TrimSpace(s)
		s = strings.TrimPrefix(s, "[")
		s = strings.TrimSuffix(s, "]")
	}
	parts := strings.Split(s, ",")
	out := make([]selection.ID, 0, len(parts))
	for _, p := range parts {
		if lenient {
			p = stripDecoration(p)
		}
		if id := selection.Normalize(p); id != "" {
			out = append(out, id)
		}
	}
	return out
}

func decodeSingleScalar(s string) []selection.ID {
	if id := selection.Normalize(s); id != "" {
		return []selection.ID{id}
	}
	return nil
}

func scalarID(v any) (selection.ID, bool) {
	switch t := v.(type) {
	case string:
		id := selection.Normalize(t)
		return id, id != ""
	case json.Number:
		return numberID(t), true
	default:
		return "", false
	}
}

// numberID renders a JSON number in canonical decimal form so that 3, 3.0 and
// 3e0 name the same identifier. Integers beyond float64 precision keep their
// literal text.
func numberID(n json.Number) selection.ID {
	if i, err := n.Int64(); err == nil {
		return selection.ID(strconv.FormatInt(i, 10))
	}
	f, err := n.Float64()
	if err != nil {
		return selection.ID(n.String())
	}
	if f == math.Trunc(f) && math.Abs(f) <= 1<<53 {
		return selection.ID(strconv.FormatInt(int64(f), 10))
	}
	if math.Abs(f) > 1<<53 && !strings.ContainsAny(n.String(), ".eE") {
		return selection.ID(n.String())
	}
	return selection.ID(strconv.FormatFloat(f, 'g', -1, 64))
}

func stripDecoration(s string) string {
	return strings.Trim(strings.TrimSpace(s), `[]{}"' `)
}

func dedupe(ids []selection.ID) []selection.ID {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[selection.ID]struct{}, len(ids))
	out := make([]selection.ID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func describe(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "bool"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "empty string"
	default:
		b, _ := json.Marshal(v)
		return string(bytes.TrimSpace(b))
	}
}
