package dict

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

var ErrUnknownDict = errors.New("dict: unknown dict code")

// StaticResolver serves reference lists from an in-memory document, usually
// loaded from YAML:
//
//	version: 1
//	dicts:
//	  job_types:
//	    - {code: "1", label: Plumbing}
//	    - {code: "2", label: Electrical, status: disabled}
type StaticResolver struct {
	dicts map[string][]Option
}

type staticDocument struct {
	Version int                 `yaml:"version"`
	Dicts   map[string][]Option `yaml:"dicts"`
}

func NewStaticResolver(dicts map[string][]Option) *StaticResolver {
	out := make(map[string][]Option, len(dicts))
	for code, opts := range dicts {
		out[strings.TrimSpace(code)] = append([]Option(nil), opts...)
	}
	return &StaticResolver{dicts: out}
}

func ParseStaticYAML(b []byte) (*StaticResolver, error) {
	var doc staticDocument
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, err
	}
	if doc.Version != 1 {
		return nil, errors.New("dict: unsupported version")
	}
	if doc.Dicts == nil {
		return nil, errors.New("dict: missing dicts")
	}
	for code, opts := range doc.Dicts {
		seen := make(map[string]struct{}, len(opts))
		for i, opt := range opts {
			c := strings.TrimSpace(opt.Code)
			if c == "" {
				return nil, fmt.Errorf("dict: %s[%d]: code is required", code, i)
			}
			if _, dup := seen[c]; dup {
				return nil, fmt.Errorf("dict: %s: duplicate code %q", code, c)
			}
			seen[c] = struct{}{}
			opts[i].Code = c
		}
	}
	return NewStaticResolver(doc.Dicts), nil
}

func LoadStatic(path string) (*StaticResolver, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseStaticYAML(b)
}

func (r *StaticResolver) ResolveLabel(_ context.Context, dictCode string, code string) (string, bool, error) {
	opts, ok := r.dicts[dictCode]
	if !ok {
		return "", false, ErrUnknownDict
	}
	for _, opt := range opts {
		if opt.Code == code {
			return opt.Label, true, nil
		}
	}
	return "", false, nil
}

// ListOptions returns the active options of dictCode whose code or label
// contains keyword (case-insensitive). limit <= 0 means no limit.
func (r *StaticResolver) ListOptions(_ context.Context, dictCode string, keyword string, limit int) ([]Option, error) {
	opts, ok := r.dicts[dictCode]
	if !ok {
		return nil, ErrUnknownDict
	}
	keyword = strings.ToLower(keyword)
	out := make([]Option, 0, len(opts))
	for _, opt := range opts {
		if !opt.Active() {
			continue
		}
		if keyword != "" && !strings.Contains(strings.ToLower(opt.Code), keyword) && !strings.Contains(strings.ToLower(opt.Label), keyword) {
			continue
		}
		out = append(out, opt)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}
