package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/aussiebroadwan/hackreg/internal/registration/blob"
)

// MaxResumeSize caps uploaded resumes.
const MaxResumeSize = 5 << 20

var pdfMagic = []byte("%PDF-")

// UploadResume stores a PDF resume for id.
func (s *AdmissionService) UploadResume(ctx context.Context, id string, data []byte) error {
	switch {
	case len(data) == 0:
		return newError(KindValidation, "Resume is empty.")
	case len(data) > MaxResumeSize:
		return newError(KindValidation, fmt.Sprintf("Resume must be at most %d MiB.", MaxResumeSize>>20))
	case !bytes.HasPrefix(data, pdfMagic):
		return newError(KindValidation, "Resume must be a PDF.")
	}

	if _, err := s.Store.Users().GetByID(ctx, id); err != nil {
		return storeError(err)
	}
	return s.Blobs.Put(ctx, blob.ResumeKey(id), data)
}

// GetResume returns id's resume to requesterID. The owner, admins and
// sponsors with resume access may read it.
func (s *AdmissionService) GetResume(ctx context.Context, requesterID, id string) ([]byte, error) {
	if requesterID != id {
		requester, err := s.Store.Users().GetByID(ctx, requesterID)
		if err != nil {
			return nil, storeError(err)
		}
		if !requester.CanReadResumes() {
			return nil, newError(KindAuthorization, "You do not have access to resumes.")
		}
	}

	data, err := s.Blobs.Get(ctx, blob.ResumeKey(id))
	if errors.Is(err, blob.ErrNotFound) {
		return nil, wrapError(KindNotFound, "No resume uploaded.", err)
	}
	return data, err
}
