package ocr

// Package ocr defines abstraction layers for plugging third-party text
// detection and recognition engines (for example, Tesseract or a PaddleOCR
// serving container) into the ledger extraction pipeline. The interfaces are
// intentionally small and transport-agnostic so engines can be backed by
// native libraries or remote APIs without leaking provider-specific concerns
// into callers.
