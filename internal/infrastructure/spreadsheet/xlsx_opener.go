package spreadsheet

import (
	"bytes"
	"fmt"
	"io"

	"github.com/gabriel-vasile/mimetype"
	app "github.com/mohammadpnp/padron-import/internal/application/member"
	domain "github.com/mohammadpnp/padron-import/internal/domain/member"
	"github.com/xuri/excelize/v2"
)

var acceptedKinds = []string{
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	"application/zip",
}

// XLSXOpener streams the first worksheet of an Office Open XML workbook.
type XLSXOpener struct{}

func NewXLSXOpener() *XLSXOpener {
	return &XLSXOpener{}
}

// Validate checks the payload's detected kind, or any of its parents, against the xlsx family,
// then requires the bytes to open as a workbook with at least one sheet.
func (o *XLSXOpener) Validate(data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("%w: empty upload", domain.ErrInvalidFileKind)
	}
	detected := mimetype.Detect(data)
	if !acceptedKind(detected) {
		return fmt.Errorf("%w: detected %s", domain.ErrInvalidFileKind, detected.String())
	}

	book, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%w: open workbook: %v", domain.ErrInvalidFileKind, err)
	}
	defer book.Close()
	if len(book.GetSheetList()) == 0 {
		return fmt.Errorf("%w: workbook has no sheets", domain.ErrInvalidFileKind)
	}
	return nil
}

func acceptedKind(detected *mimetype.MIME) bool {
	for m := detected; m != nil; m = m.Parent() {
		for _, kind := range acceptedKinds {
			if m.Is(kind) {
				return true
			}
		}
	}
	return false
}

func (o *XLSXOpener) Open(r io.Reader) (app.RowIterator, error) {
	book, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}

	sheets := book.GetSheetList()
	if len(sheets) == 0 {
		book.Close()
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := book.Rows(sheets[0])
	if err != nil {
		book.Close()
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	return &rowIterator{book: book, rows: rows}, nil
}

type rowIterator struct {
	book *excelize.File
	rows *excelize.Rows
}

func (it *rowIterator) Next() bool {
	return it.rows.Next()
}

func (it *rowIterator) Columns() ([]string, error) {
	return it.rows.Columns()
}

func (it *rowIterator) Err() error {
	return it.rows.Error()
}

func (it *rowIterator) Close() error {
	rowsErr := it.rows.Close()
	if err := it.book.Close(); err != nil {
		return err
	}
	return rowsErr
}
