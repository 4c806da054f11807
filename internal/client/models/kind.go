package models

import (
	"path/filepath"
	"strings"
)

// FileKind is a coarse file category used when rendering lists.
type FileKind string

const (
	KindPDF          FileKind = "pdf"
	KindSpreadsheet  FileKind = "spreadsheet"
	KindImage        FileKind = "image"
	KindDocument     FileKind = "document"
	KindPresentation FileKind = "presentation"
	KindArchive      FileKind = "archive"
	KindAudio        FileKind = "audio"
	KindVideo        FileKind = "video"
	KindCode         FileKind = "code"
	KindDesign       FileKind = "design"
	KindOther        FileKind = "other"
)

var kindsByExt = map[string]FileKind{
	"pdf": KindPDF,
	"xls": KindSpreadsheet, "xlsx": KindSpreadsheet, "csv": KindSpreadsheet,
	"jpg": KindImage, "jpeg": KindImage, "png": KindImage, "gif": KindImage, "bmp": KindImage, "tiff": KindImage,
	"doc": KindDocument, "docx": KindDocument,
	"ppt": KindPresentation, "pptx": KindPresentation,
	"zip": KindArchive, "rar": KindArchive, "7z": KindArchive, "tar": KindArchive, "gz": KindArchive,
	"mp3": KindAudio, "wav": KindAudio, "ogg": KindAudio,
	"mp4": KindVideo, "avi": KindVideo, "mkv": KindVideo, "mov": KindVideo, "webm": KindVideo,
	"html": KindCode, "css": KindCode, "js": KindCode, "py": KindCode, "java": KindCode, "rb": KindCode,
	"php": KindCode, "c": KindCode, "cpp": KindCode, "cs": KindCode, "go": KindCode, "rs": KindCode, "swift": KindCode,
	"ai": KindDesign, "psd": KindDesign,
}

// KindOf maps a file name to its FileKind, case-insensitively.
func KindOf(name string) FileKind {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	if k, ok := kindsByExt[ext]; ok {
		return k
	}
	return KindOther
}
