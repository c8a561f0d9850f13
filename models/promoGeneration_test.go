package models

import (
	"errors"
	"fmt"
	"testing"

	"bitbucket.org/mmdatafocus/pos_backend/utils"
	mysqlDriver "github.com/go-sql-driver/mysql"
)

// Two requests for the same receipt can both pass the validation-time
// duplicate check; the loser then trips the unique index inside the
// transaction. That outcome is a duplicate submission and must surface as a
// validation failure, not a persistence fault.
func TestWrapGenerationError_DuplicateReceiptIsValidationError(t *testing.T) {
	dup := &mysqlDriver.MySQLError{Number: 1062, Message: "Duplicate entry 'R-1' for key 'sales.receipt_id'"}

	err := wrapGenerationError(dup)
	var ve *utils.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %T: %v", err, err)
	}
	if msg, ok := ve.Fields["receipt_id"]; !ok || msg != "already processed" {
		t.Fatalf("expected receipt_id=already processed, got %v", ve.Fields)
	}

	// Wrapped duplicate errors classify the same way.
	err = wrapGenerationError(fmt.Errorf("create sale: %w", dup))
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError for wrapped duplicate, got %T: %v", err, err)
	}
}

func TestWrapGenerationError_OtherErrorsArePersistenceErrors(t *testing.T) {
	err := wrapGenerationError(errors.New("connection reset"))

	var pe *utils.PersistenceError
	if !errors.As(err, &pe) {
		t.Fatalf("expected PersistenceError, got %T: %v", err, err)
	}
	if pe.Op != "GeneratePromoCodes" {
		t.Fatalf("expected op GeneratePromoCodes, got %q", pe.Op)
	}
}
