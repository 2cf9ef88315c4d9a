package dict

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"sync"
)

var errResolverNotConfigured = errors.New("dict: resolver not configured")

const (
	StatusActive   = "active"
	StatusDisabled = "disabled"
)

// Option is one entry of a reference list such as job types, activities or
// roles.
type Option struct {
	Code   string `yaml:"code"`
	Label  string `yaml:"label"`
	Status string `yaml:"status"`
}

func (o Option) Active() bool {
	s := strings.ToLower(strings.TrimSpace(o.Status))
	return s == "" || s == StatusActive
}

type Resolver interface {
	ResolveLabel(ctx context.Context, dictCode string, code string) (string, bool, error)
	ListOptions(ctx context.Context, dictCode string, keyword string, limit int) ([]Option, error)
}

var registry = struct {
	mu sync.RWMutex
	r  Resolver
}{}

func RegisterResolver(r Resolver) error {
	if r == nil {
		return errors.New("dict: resolver is nil")
	}
	v := reflect.ValueOf(r)
	if (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface || v.Kind() == reflect.Slice || v.Kind() == reflect.Map || v.Kind() == reflect.Func || v.Kind() == reflect.Chan) && v.IsNil() {
		return errors.New("dict: resolver is nil")
	}
	registry.mu.Lock()
	registry.r = r
	registry.mu.Unlock()
	return nil
}

func ResolveLabel(ctx context.Context, dictCode string, code string) (string, bool, error) {
	resolver, err := currentResolver()
	if err != nil {
		return "", false, err
	}
	return resolver.ResolveLabel(ctx, strings.TrimSpace(dictCode), strings.TrimSpace(code))
}

func ListOptions(ctx context.Context, dictCode string, keyword string, limit int) ([]Option, error) {
	resolver, err := currentResolver()
	if err != nil {
		return nil, err
	}
	return resolver.ListOptions(ctx, strings.TrimSpace(dictCode), strings.TrimSpace(keyword), limit)
}

// IsNotConfigured reports whether err comes from a call made before any
// resolver was registered.
func IsNotConfigured(err error) bool {
	return errors.Is(err, errResolverNotConfigured)
}

func currentResolver() (Resolver, error) {
	registry.mu.RLock()
	r := registry.r
	registry.mu.RUnlock()
	if r == nil {
		return nil, errResolverNotConfigured
	}
	return r, nil
}
