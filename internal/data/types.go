package data

import "virusscope/internal/features"

// Case is one labelled training row: a patient record and the virus the
// lab confirmed.
type Case struct {
	Record features.Record
	Virus  string
}

const LabelColumn = "virus"

func Header() []string {
	return append(features.Names(), LabelColumn)
}
