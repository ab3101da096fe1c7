// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for the conversation log.
package model

import (
	"errors"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
)

// ErrNotAnImage is returned when a selected attachment payload is not
// an image. The slot is left unchanged in that case.
var ErrNotAnImage = errors.New("attachment is not an image")

// =============================================================================
// PENDING ATTACHMENT
// =============================================================================

// PendingAttachment holds one image staged for the next send.
type PendingAttachment struct {
	Name string // original filename
	Data []byte // raw image bytes
	MIME string // detected content type, e.g. "image/png"
}

// =============================================================================
// ATTACHMENT SLOT
// =============================================================================

// AttachmentSlot holds at most one pending attachment. Selecting a new
// image replaces the previous one (last-write-wins); clearing an empty
// slot is a no-op.
type AttachmentSlot struct {
	pending *PendingAttachment
}

// Select validates the payload as an image and stores it in the slot,
// replacing any previous attachment. Non-image payloads return
// ErrNotAnImage and leave the slot untouched.
func (s *AttachmentSlot) Select(name string, data []byte) error {
	mimeType, ok := sniffImage(name, data)
	if !ok {
		return ErrNotAnImage
	}

	s.pending = &PendingAttachment{
		Name: filepath.Base(name),
		Data: data,
		MIME: mimeType,
	}
	return nil
}

// Clear empties the slot. Safe to call when the slot is already empty.
func (s *AttachmentSlot) Clear() {
	s.pending = nil
}

// Get returns the pending attachment, or nil if the slot is empty.
func (s *AttachmentSlot) Get() *PendingAttachment {
	return s.pending
}

// Take returns the pending attachment and clears the slot. The send
// pipeline consumes the slot this way before the request goes out.
func (s *AttachmentSlot) Take() *PendingAttachment {
	att := s.pending
	s.pending = nil
	return att
}

// HasPending returns true if an attachment is staged.
func (s *AttachmentSlot) HasPending() bool {
	return s.pending != nil
}

// =============================================================================
// IMAGE DETECTION
// =============================================================================

// sniffImage determines whether the payload is an image, first by content
// sniffing, then by filename extension when sniffing is inconclusive.
// Returns the detected MIME type and whether it is an image.
func sniffImage(name string, data []byte) (string, bool) {
	if len(data) == 0 {
		return "", false
	}

	detected := http.DetectContentType(data)
	if strings.HasPrefix(detected, "image/") {
		return detected, true
	}

	// Sniffing only recognizes common magic numbers. Fall back to the
	// extension for types like image/svg+xml that sniff as text.
	if detected == "application/octet-stream" || strings.HasPrefix(detected, "text/") {
		byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(name)))
		if strings.HasPrefix(byExt, "image/") {
			return byExt, true
		}
	}

	return detected, false
}
