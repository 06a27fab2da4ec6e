// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cpufreq

import (
	"fmt"
	"sort"
	"strings"
)

// Value is implemented by every attribute vocabulary in this package.
type Value interface {
	~uint8
	comparable
	String() string
}

// Set is an unordered, deduplicated collection of attribute values,
// as read from an "available" attribute file.
type Set[T Value] map[T]struct{}

// NewSet returns a set containing values.
func NewSet[T Value](values ...T) Set[T] {
	set := make(Set[T], len(values))
	for _, value := range values {
		set[value] = struct{}{}
	}
	return set
}

// Contains reports whether value is in the set.
func (s Set[T]) Contains(value T) bool {
	_, ok := s[value]
	return ok
}

// Sorted returns the members ordered by their sysfs token.
func (s Set[T]) Sorted() []T {
	values := make([]T, 0, len(s))
	for value := range s {
		values = append(values, value)
	}
	sort.Slice(values, func(i, j int) bool {
		return values[i].String() < values[j].String()
	})
	return values
}

// String formats the set as space-separated tokens in sorted order,
// the same shape as the available-values files.
func (s Set[T]) String() string {
	tokens := make([]string, 0, len(s))
	for _, value := range s.Sorted() {
		tokens = append(tokens, value.String())
	}
	return strings.Join(tokens, " ")
}

type entry[T Value] struct {
	value T
	token string
}

// vocabulary is the bidirectional token table for one attribute
// family. Values are listed in declaration order.
type vocabulary[T Value] struct {
	name   string
	order  []T
	tokens map[T]string
	values map[string]T
}

func newVocabulary[T Value](name string, entries ...entry[T]) *vocabulary[T] {
	v := &vocabulary[T]{
		name:   name,
		tokens: make(map[T]string, len(entries)),
		values: make(map[string]T, len(entries)),
	}
	for _, e := range entries {
		v.order = append(v.order, e.value)
		v.tokens[e.value] = e.token
		v.values[e.token] = e.value
	}
	return v
}

func (v *vocabulary[T]) parse(token string) (T, error) {
	value, ok := v.values[token]
	if !ok {
		var zero T
		return zero, &ParseError{Vocabulary: v.name, Token: token}
	}
	return value, nil
}

func (v *vocabulary[T]) format(value T) string {
	if token, ok := v.tokens[value]; ok {
		return token
	}
	return fmt.Sprintf("invalid %s (%d)", v.name, uint8(value))
}

func (v *vocabulary[T]) all() []T {
	return append([]T(nil), v.order...)
}
