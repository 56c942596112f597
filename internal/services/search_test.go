package services

import (
	"errors"
	"testing"

	"kopilka/internal/core"
	"kopilka/internal/log"
)

func searchFixture() []core.Transaction {
	return []core.Transaction{
		{Category: "Supermarket", Description: "Lenta"},
		{Category: "Supermarket", Description: "Magnit"},
		{Category: "Cafe", Description: "LENTA cafe corner"},
		{Category: "Mobile", Description: "Top-up +7 921 111-22-33"},
		{Category: "Transfers", Description: "Ivanov A."},
		{Category: "Transfers", Description: "Card to card"},
		{Category: "Salary", Description: "Petrov B."},
		{Category: "", Description: ""},
	}
}

func TestSimpleSearch(t *testing.T) {
	s := NewSearchService(log.Discard("test"))
	txns := searchFixture()

	t.Run("empty query matches nothing", func(t *testing.T) {
		if got := s.SimpleSearch("", txns, false); len(got) != 0 {
			t.Fatalf("empty query returned %d results", len(got))
		}
	})

	t.Run("case-insensitive by default", func(t *testing.T) {
		got := s.SimpleSearch("lenta", txns, false)
		if len(got) != 2 {
			t.Fatalf("got %d results, want 2: %+v", len(got), got)
		}
	})

	t.Run("case-sensitive on request", func(t *testing.T) {
		got := s.SimpleSearch("Lenta", txns, true)
		if len(got) != 1 || got[0].Description != "Lenta" {
			t.Fatalf("got %+v, want the single exact-case match", got)
		}
	})

	t.Run("category matches too", func(t *testing.T) {
		got := s.SimpleSearch("transfers", txns, false)
		if len(got) != 2 {
			t.Fatalf("got %d results, want 2", len(got))
		}
	})
}

func TestPhoneNumberSearch(t *testing.T) {
	s := NewSearchService(log.Discard("test"))

	got, err := s.PhoneNumberSearch(searchFixture(), "")
	if err != nil {
		t.Fatalf("PhoneNumberSearch: %v", err)
	}
	if len(got) != 1 || got[0].Category != "Mobile" {
		t.Fatalf("got %+v, want the single phone top-up", got)
	}
}

func TestPhoneNumberSearch_CustomPattern(t *testing.T) {
	s := NewSearchService(log.Discard("test"))

	got, err := s.PhoneNumberSearch(searchFixture(), `\d{2}-\d{2}$`)
	if err != nil {
		t.Fatalf("PhoneNumberSearch: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("custom pattern got %d results, want 1", len(got))
	}

	if _, err := s.PhoneNumberSearch(searchFixture(), `(`); !errors.Is(err, core.ErrInvalidPattern) {
		t.Errorf("bad pattern: err = %v, want ErrInvalidPattern", err)
	}
}

func TestPersonTransfersSearch(t *testing.T) {
	s := NewSearchService(log.Discard("test"))

	got, err := s.PersonTransfersSearch(searchFixture(), "")
	if err != nil {
		t.Fatalf("PersonTransfersSearch: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d results, want 1: %+v", len(got), got)
	}
	if got[0].Description != "Ivanov A." {
		t.Errorf("got %q", got[0].Description)
	}

	// "Petrov B." matches the name pattern but is not a transfer and must
	// never appear.
	for _, txn := range got {
		if txn.Category != "Transfers" {
			t.Errorf("non-transfer leaked into results: %+v", txn)
		}
	}
}
