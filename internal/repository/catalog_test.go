package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeCatalogFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "instruments.json")
	data := `[
        {"symbol": "RELIANCE.NS", "name": "Reliance Industries", "sector": "Energy", "exchange": "NSE"},
        {"symbol": "TCS.NS", "name": "Tata Consultancy Services", "sector": "IT", "exchange": "NSE"},
        {"symbol": "TATAMOTORS.NS", "name": "Tata Motors", "sector": "Auto", "exchange": "NSE"},
        {"symbol": "INFY.NS", "name": "Infosys", "sector": "IT", "exchange": "NSE"}
    ]`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestCatalogLookup(t *testing.T) {
	c, err := NewCatalog(writeCatalogFixture(t))
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	if c.Len() != 4 {
		t.Fatalf("expected 4 instruments, got %d", c.Len())
	}

	ins, ok := c.Lookup("reliance.ns")
	if !ok {
		t.Fatalf("expected case-insensitive lookup to hit")
	}
	if ins.Name != "Reliance Industries" {
		t.Fatalf("unexpected instrument %+v", ins)
	}

	if _, ok := c.Lookup("NOPE.NS"); ok {
		t.Fatalf("expected unknown symbol to miss")
	}
}

func TestCatalogSearchRanking(t *testing.T) {
	c, err := NewCatalog(writeCatalogFixture(t))
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}

	got, err := c.Search(context.Background(), "tcs", 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if got[0].Symbol != "TCS.NS" {
		t.Fatalf("expected exact symbol first, got %s", got[0].Symbol)
	}

	got, err = c.Search(context.Background(), "tata", 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 tata matches, got %d", len(got))
	}

	if _, err := c.Search(context.Background(), "zzz", 10); err == nil {
		t.Fatalf("expected empty result error")
	}
}

func TestCatalogSearchLimit(t *testing.T) {
	c, err := NewCatalog(writeCatalogFixture(t))
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	got, err := c.Search(context.Background(), "ns", 2)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected limit of 2, got %d", len(got))
	}
}
