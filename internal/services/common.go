package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yukikurage/assessment-api/internal/access"
	"github.com/yukikurage/assessment-api/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// lookupError converts a missing row into notFound and wraps any other store error.
func lookupError(err error, notFound error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return fmt.Errorf("failed to find %s: %w", what, err)
}

// accessError maps a missing resource reported by the access checker to the caller's not-found error.
func accessError(err error, notFound error) error {
	if errors.Is(err, access.ErrResourceNotFound) {
		return notFound
	}
	return err
}

// uniqueUint64 returns ids without duplicates, keeping first occurrences in order.
func uniqueUint64(values []uint64) []uint64 {
	seen := make(map[uint64]struct{}, len(values))
	result := make([]uint64, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		result = append(result, v)
	}
	return result
}

// isPermutation reports whether candidate holds exactly the ids of current, each once.
func isPermutation(current, candidate []uint64) bool {
	if len(current) != len(candidate) {
		return false
	}
	remaining := make(map[uint64]int, len(current))
	for _, id := range current {
		remaining[id]++
	}
	for _, id := range candidate {
		if remaining[id] == 0 {
			return false
		}
		remaining[id]--
	}
	return true
}

// parsePerspective validates a literal, treating an empty value as SELF.
func parsePerspective(raw string) (models.Perspective, error) {
	if strings.TrimSpace(raw) == "" {
		return models.PerspectiveSelf, nil
	}
	p := models.Perspective(raw)
	if !p.IsValid() {
		return "", ErrInvalidPerspective.WithDetails(map[string]string{"perspective": raw})
	}
	return p, nil
}

// parsePerspectiveSet validates and de-duplicates perspective literals; an empty set stays empty.
func parsePerspectiveSet(raw []string) (datatypes.JSONSlice[models.Perspective], error) {
	set := make(datatypes.JSONSlice[models.Perspective], 0, len(raw))
	seen := make(map[models.Perspective]bool, len(raw))
	for _, r := range raw {
		p := models.Perspective(r)
		if !p.IsValid() {
			return nil, ErrInvalidPerspective.WithDetails(map[string]string{"perspective": r})
		}
		if seen[p] {
			continue
		}
		seen[p] = true
		set = append(set, p)
	}
	return set, nil
}
