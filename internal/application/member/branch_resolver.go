package member

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	domain "github.com/mohammadpnp/padron-import/internal/domain/member"
	"github.com/mohammadpnp/padron-import/pkg/logger"
)

const maxBranchCodeLength = 6

type BranchInfo struct {
	Name string `yaml:"name"`
	City string `yaml:"city"`
}

// BranchCatalogue names the branch codes known ahead of any import, keyed by normalized code.
type BranchCatalogue map[string]BranchInfo

func DefaultBranchCatalogue() BranchCatalogue {
	return BranchCatalogue{
		"1":   {Name: "Casa Matriz", City: "Asunción"},
		"2":   {Name: "Sucursal San Lorenzo", City: "San Lorenzo"},
		"3":   {Name: "Sucursal Luque", City: "Luque"},
		"4":   {Name: "Sucursal Fernando de la Mora", City: "Fernando de la Mora"},
		"5":   {Name: "Sucursal Lambaré", City: "Lambaré"},
		"ASU": {Name: "Casa Matriz", City: "Asunción"},
		"CAP": {Name: "Sucursal Capiatá", City: "Capiatá"},
		"CDE": {Name: "Sucursal Ciudad del Este", City: "Ciudad del Este"},
		"CON": {Name: "Sucursal Concepción", City: "Concepción"},
		"ENC": {Name: "Sucursal Encarnación", City: "Encarnación"},
		"VIL": {Name: "Sucursal Villarrica", City: "Villarrica"},
	}
}

// Merge returns a catalogue with extra entries layered over c.
func (c BranchCatalogue) Merge(extra map[string]BranchInfo) BranchCatalogue {
	out := make(BranchCatalogue, len(c)+len(extra))
	for code, info := range c {
		out[branchKey(code)] = info
	}
	for code, info := range extra {
		out[branchKey(code)] = info
	}
	return out
}

func (c BranchCatalogue) describe(code string) domain.Branch {
	branch := domain.Branch{Code: code, Name: "Sucursal " + code}
	if info, ok := c[code]; ok {
		branch.Name = info.Name
		if info.City != "" {
			city := info.City
			branch.City = &city
		}
	}
	return branch
}

// BranchResolver maps raw branch text to branch ids for the duration of one job.
type BranchResolver struct {
	store     domain.BranchStore
	catalogue BranchCatalogue
	byKey     map[string]uint
	failed    map[string]struct{}
	logger    logger.Logger
	created   int
}

func NewBranchResolver(ctx context.Context, store domain.BranchStore, catalogue BranchCatalogue, log logger.Logger) (*BranchResolver, error) {
	branches, err := store.ListBranches(ctx)
	if err != nil {
		return nil, fmt.Errorf("load branches: %w", err)
	}

	r := &BranchResolver{
		store:     store,
		catalogue: catalogue,
		byKey:     make(map[string]uint, len(branches)*2),
		failed:    make(map[string]struct{}),
		logger:    log,
	}
	for _, b := range branches {
		r.remember(b)
	}
	return r, nil
}

// Resolve returns nil when the text is empty, implausible, or could not be created.
func (r *BranchResolver) Resolve(ctx context.Context, raw string) *uint {
	key := branchKey(raw)
	if key == "" {
		return nil
	}
	if id, ok := r.byKey[key]; ok {
		return &id
	}
	if _, ok := r.failed[key]; ok {
		return nil
	}
	if utf8.RuneCountInString(key) > maxBranchCodeLength || domain.IsYesNo(key) {
		return nil
	}

	created, err := r.store.CreateBranch(ctx, r.catalogue.describe(key))
	if err != nil {
		r.logger.Warn("auto-create branch failed", "code", key, "error", err)
		r.failed[key] = struct{}{}
		return nil
	}
	r.created++
	r.logger.Info("branch auto-created", "code", created.Code, "name", created.Name, "branch_id", created.ID)
	r.remember(created)

	id := created.ID
	return &id
}

// Created reports how many branches this resolver inserted.
func (r *BranchResolver) Created() int {
	return r.created
}

func (r *BranchResolver) remember(b domain.Branch) {
	r.byKey[branchKey(b.Code)] = b.ID
	if name := branchKey(b.Name); name != "" {
		if _, exists := r.byKey[name]; !exists {
			r.byKey[name] = b.ID
		}
	}
}

// branchKey upper-cases, collapses whitespace and drops leading zeros from numeric codes.
func branchKey(raw string) string {
	key := strings.ToUpper(strings.Join(strings.Fields(raw), " "))
	if key == "" || strings.Trim(key, "0123456789") != "" {
		return key
	}
	if trimmed := strings.TrimLeft(key, "0"); trimmed != "" {
		return trimmed
	}
	return "0"
}
