package services

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mkrawczyk/volleypanel/models"
	"github.com/mkrawczyk/volleypanel/storage"
)

type SponsorService interface {
	AddSponsor(ctx context.Context, slug string, cred Credential, name string, weight int) (*Snapshot, error)
	UpdateSponsor(ctx context.Context, slug string, cred Credential, sponsorID string, name *string, weight *int, active *bool) (*Snapshot, error)
	RemoveSponsor(ctx context.Context, slug string, cred Credential, sponsorID string) (*Snapshot, error)
	// UploadLogo stores the image with the configured uploader and records
	// the public URL on the sponsor entry.
	UploadLogo(ctx context.Context, slug string, cred Credential, sponsorID, contentType string, r io.Reader) (*Snapshot, error)
}

type sponsorService struct {
	state    StateService
	uploader storage.FileUploader
}

// NewSponsorService accepts a nil uploader; logo uploads then fail with
// ErrUploadsDisabled while the rest of sponsor management keeps working.
func NewSponsorService(state StateService, uploader storage.FileUploader) SponsorService {
	return &sponsorService{state: state, uploader: uploader}
}

func (s *sponsorService) AddSponsor(ctx context.Context, slug string, cred Credential, name string, weight int) (*Snapshot, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrSponsorNameRequired
	}
	if weight <= 0 {
		weight = 1
	}
	return s.state.Mutate(ctx, slug, cred, func(st *models.TournamentState) error {
		st.Meta.Sponsors = append(st.Meta.Sponsors, models.Sponsor{
			ID:     uuid.NewString(),
			Name:   name,
			Weight: weight,
			Active: true,
		})
		return nil
	})
}

func (s *sponsorService) UpdateSponsor(ctx context.Context, slug string, cred Credential, sponsorID string, name *string, weight *int, active *bool) (*Snapshot, error) {
	return s.state.Mutate(ctx, slug, cred, func(st *models.TournamentState) error {
		sp := findSponsor(st, sponsorID)
		if sp == nil {
			return ErrSponsorNotFound
		}
		if name != nil && strings.TrimSpace(*name) != "" {
			sp.Name = strings.TrimSpace(*name)
		}
		if weight != nil && *weight > 0 {
			sp.Weight = *weight
		}
		if active != nil {
			sp.Active = *active
		}
		return nil
	})
}

func (s *sponsorService) RemoveSponsor(ctx context.Context, slug string, cred Credential, sponsorID string) (*Snapshot, error) {
	var logoKey *string
	snap, err := s.state.Mutate(ctx, slug, cred, func(st *models.TournamentState) error {
		for i := range st.Meta.Sponsors {
			if st.Meta.Sponsors[i].ID == sponsorID {
				logoKey = st.Meta.Sponsors[i].LogoKey
				st.Meta.Sponsors = append(st.Meta.Sponsors[:i], st.Meta.Sponsors[i+1:]...)
				return nil
			}
		}
		return ErrSponsorNotFound
	})
	if err != nil {
		return nil, err
	}
	// Orphaned logo cleanup is best effort; the document no longer
	// references the object either way.
	if logoKey != nil && s.uploader != nil {
		_ = s.uploader.Delete(ctx, *logoKey)
	}
	return snap, nil
}

func (s *sponsorService) UploadLogo(ctx context.Context, slug string, cred Credential, sponsorID, contentType string, r io.Reader) (*Snapshot, error) {
	if s.uploader == nil {
		return nil, ErrUploadsDisabled
	}

	key := fmt.Sprintf("sponsors/%s/%s-%d", slug, sponsorID, time.Now().Unix())
	result, err := s.uploader.Upload(ctx, key, contentType, r)
	if err != nil {
		return nil, fmt.Errorf("failed to upload sponsor logo: %w", err)
	}

	snap, err := s.state.Mutate(ctx, slug, cred, func(st *models.TournamentState) error {
		sp := findSponsor(st, sponsorID)
		if sp == nil {
			return ErrSponsorNotFound
		}
		sp.LogoKey = &result.Key
		sp.LogoURL = &result.Location
		return nil
	})
	if err != nil {
		// The document was never updated; drop the freshly uploaded object.
		_ = s.uploader.Delete(ctx, result.Key)
		return nil, err
	}
	return snap, nil
}

func findSponsor(st *models.TournamentState, sponsorID string) *models.Sponsor {
	for i := range st.Meta.Sponsors {
		if st.Meta.Sponsors[i].ID == sponsorID {
			return &st.Meta.Sponsors[i]
		}
	}
	return nil
}
