package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExportRequestValidate(t *testing.T) {
	assert.NoError(t, ExportRequest{}.Validate(), "empty format defaults to json downstream")
	assert.NoError(t, ExportRequest{Format: "json"}.Validate())
	assert.NoError(t, ExportRequest{Format: "csv"}.Validate())
	assert.Error(t, ExportRequest{Format: "xml"}.Validate())
}
