// Package common keeps enums shared by configuration, the export engine and
// the command line tool. They live in a separate package so encoders can use
// them without pulling in configuration processing.
package common

//go:generate go tool go-enum --nocase --marshal --mustparse --names

import "strings"

// Specification of requested export format.
// ENUM(pdf, docx, odt, epub, fdx, fountain)
type Format int

// Ext returns file name extension (with leading dot) for the format.
func (f Format) Ext() string {
	switch f {
	case FormatPdf:
		return ".pdf"
	case FormatDocx:
		return ".docx"
	case FormatOdt:
		return ".odt"
	case FormatEpub:
		return ".epub"
	case FormatFdx:
		return ".fdx"
	case FormatFountain:
		return ".fountain"
	default:
		// this should never happen
		panic("unsupported format requested")
	}
}

// Screenplay reports whether format is produced from screenplay elements
// rather than from document blocks.
func (f Format) Screenplay() bool {
	return f == FormatFdx || f == FormatFountain
}

// Label returns upper-case name suitable for user facing messages.
func (f Format) Label() string {
	return strings.ToUpper(f.String())
}

// Specification of PDF page size.
// ENUM(a4, letter, legal)
type PageSize int

// Dimensions returns portrait page width and height in millimeters.
func (p PageSize) Dimensions() (float64, float64) {
	switch p {
	case PageSizeLetter:
		return 215.9, 279.4
	case PageSizeLegal:
		return 215.9, 355.6
	default:
		return 210, 297
	}
}

// Specification of PDF page orientation.
// ENUM(portrait, landscape)
type Orientation int

// Stage of export progress reported to the caller.
// ENUM(preparing, converting, complete, error)
type Stage int

// Percent returns fixed completion percentage associated with stage.
func (s Stage) Percent() int {
	switch s {
	case StagePreparing:
		return 10
	case StageConverting:
		return 30
	case StageComplete:
		return 100
	default:
		return 0
	}
}
