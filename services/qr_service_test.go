package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeremiapane/restaurant-tables/models"
)

func TestIssueMenuQR(t *testing.T) {
	f := newFixture(t)
	svc := NewQRService(f.tables, f.issuer, testBaseURL)

	issued, err := svc.IssueMenuQR(context.Background())
	require.NoError(t, err)
	assert.Equal(t, testBaseURL+"/api/menu", issued.URL)
	assert.Regexp(t, `^menu_.+\.png$`, issued.QRCode)

	p, err := svc.Path(issued.QRCode)
	require.NoError(t, err)
	assert.Equal(t, issued.QRCode, filepath.Base(p))
}

func TestIssueTableActionsQR(t *testing.T) {
	f := newFixture(t)
	svc := NewQRService(f.tables, f.issuer, testBaseURL)
	table := f.createTable(t, 3, models.LocationBar, 2)

	issued, err := svc.IssueTableActionsQR(context.Background(), table.ID)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("%s/api/tables/%d/actions", testBaseURL, table.ID), issued.URL)
	assert.Regexp(t, `^table-actions_.+\.png$`, issued.QRCode)

	_, err = svc.IssueTableActionsQR(context.Background(), 999)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestQRPathRejectsTraversal(t *testing.T) {
	f := newFixture(t)
	svc := NewQRService(f.tables, f.issuer, testBaseURL)

	for _, name := range []string{"", "../secret.png", "a/b.png", "missing.png"} {
		_, err := svc.Path(name)
		assert.True(t, errors.Is(err, ErrNotFound), "name %q", name)
	}
}

func TestTableMenuURL(t *testing.T) {
	assert.Equal(t, "http://tables.test/api/tables/5/menu", TableMenuURL(testBaseURL, 5))
}
