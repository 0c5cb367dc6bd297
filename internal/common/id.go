package common

import (
	"github.com/google/uuid"
)

// NewSourceID generates a unique data source ID with the "src_" prefix
func NewSourceID() string {
	return "src_" + uuid.New().String()
}

// NewDataPointID generates a unique datapoint ID with the "dp_" prefix
func NewDataPointID() string {
	return "dp_" + uuid.New().String()
}

// NewTemplateID generates a unique template ID with the "tpl_" prefix
func NewTemplateID() string {
	return "tpl_" + uuid.New().String()
}

// NewDocumentID generates a unique rendered document ID with the "doc_" prefix
func NewDocumentID() string {
	return "doc_" + uuid.New().String()
}
