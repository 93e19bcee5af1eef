package services

import (
	"context"
	"fmt"
	"strings"

	"daterbo-console/internal/adapters/upstream"
	"daterbo-console/internal/core/domain"

	"go.uber.org/zap"
)

// ReferenceKind names a reference-data collection
type ReferenceKind string

const (
	RefUsers     ReferenceKind = "users"
	RefRoles     ReferenceKind = "roles"
	RefStatuses  ReferenceKind = "statuses"
	RefLeasing   ReferenceKind = "leasing"
	RefPICs      ReferenceKind = "pics"
	RefSurveyors ReferenceKind = "surveyors"
	RefAdmins    ReferenceKind = "admins"
)

// ReferenceKinds lists every reference collection
var ReferenceKinds = []ReferenceKind{RefUsers, RefRoles, RefStatuses, RefLeasing, RefPICs, RefSurveyors, RefAdmins}

var referenceResources = map[ReferenceKind]upstream.Resource{
	RefUsers:     upstream.Users,
	RefRoles:     upstream.Roles,
	RefStatuses:  upstream.Statuses,
	RefLeasing:   upstream.Leasings,
	RefPICs:      upstream.PICs,
	RefSurveyors: upstream.Surveyors,
	RefAdmins:    upstream.Admins,
}

// ParseReferenceKind validates a collection name
func ParseReferenceKind(s string) (ReferenceKind, bool) {
	k := ReferenceKind(strings.ToLower(strings.TrimSpace(s)))
	_, ok := referenceResources[k]
	return k, ok
}

// NewItem returns a pointer to an empty item of the collection, ready for decoding
func (k ReferenceKind) NewItem() any {
	switch k {
	case RefUsers:
		return &domain.User{}
	case RefRoles:
		return &domain.RoleRef{}
	case RefStatuses:
		return &domain.Status{}
	case RefLeasing:
		return &domain.Leasing{}
	case RefPICs:
		return &domain.PIC{}
	case RefSurveyors:
		return &domain.Surveyor{}
	case RefAdmins:
		return &domain.Admin{}
	}
	return nil
}

func (k ReferenceKind) newList() any {
	switch k {
	case RefUsers:
		return &[]domain.User{}
	case RefRoles:
		return &[]domain.RoleRef{}
	case RefStatuses:
		return &[]domain.Status{}
	case RefLeasing:
		return &[]domain.Leasing{}
	case RefPICs:
		return &[]domain.PIC{}
	case RefSurveyors:
		return &[]domain.Surveyor{}
	case RefAdmins:
		return &[]domain.Admin{}
	}
	return nil
}

// ValidateReference checks the required fields of a reference item
func ValidateReference(item any, creating bool) error {
	required := func(pairs ...string) error {
		for i := 0; i < len(pairs); i += 2 {
			if strings.TrimSpace(pairs[i+1]) == "" {
				return domain.MissingField(pairs[i])
			}
		}
		return nil
	}

	switch v := item.(type) {
	case *domain.User:
		if err := required("namauser", v.Name, "email", v.Email); err != nil {
			return err
		}
		if creating {
			return required("password", v.Password)
		}
	case *domain.RoleRef:
		return required("idrole", v.ID, "namarole", v.Name)
	case *domain.Status:
		return required("namastatus", v.Name)
	case *domain.Leasing:
		return required("namaleasing", v.Name)
	case *domain.PIC:
		return required("namapic", v.Name)
	case *domain.Surveyor:
		return required("namasurveyor", v.Name)
	case *domain.Admin:
		if err := required("namaadmin", v.Name, "email", v.Email); err != nil {
			return err
		}
		if creating {
			return required("password", v.Password)
		}
	default:
		return fmt.Errorf("%w: unsupported reference item %T", domain.ErrInvalidInput, item)
	}
	return nil
}

// ReferenceService manages reference data
type ReferenceService struct {
	api    Upstream
	logger *zap.Logger
}

// NewReferenceService creates a reference service
func NewReferenceService(api Upstream, logger *zap.Logger) *ReferenceService {
	return &ReferenceService{api: api, logger: logger}
}

// List returns the collection as a typed slice
func (s *ReferenceService) List(ctx context.Context, sess *Session, kind ReferenceKind) (any, error) {
	res, err := s.resource(sess, kind)
	if err != nil {
		return nil, err
	}
	out := kind.newList()
	if err := s.api.List(ctx, sess.Token(), res, out); err != nil {
		return nil, sess.Guard(ctx, err)
	}
	return out, nil
}

// Create adds an item
func (s *ReferenceService) Create(ctx context.Context, sess *Session, kind ReferenceKind, item any) error {
	res, err := s.resource(sess, kind)
	if err != nil {
		return err
	}
	if err := ValidateReference(item, true); err != nil {
		return err
	}
	if err := s.api.Create(ctx, sess.Token(), res, item); err != nil {
		return sess.Guard(ctx, err)
	}
	s.logger.Info("reference created", zap.String("kind", string(kind)), zap.String("by", sess.Identity().Email))
	return nil
}

// Update replaces the item keyed by id (the email for admins)
func (s *ReferenceService) Update(ctx context.Context, sess *Session, kind ReferenceKind, id string, item any) error {
	res, err := s.resource(sess, kind)
	if err != nil {
		return err
	}
	if strings.TrimSpace(id) == "" {
		return domain.MissingField("id")
	}
	if err := ValidateReference(item, false); err != nil {
		return err
	}
	if err := s.api.Update(ctx, sess.Token(), res, id, item); err != nil {
		return sess.Guard(ctx, err)
	}
	s.logger.Info("reference updated",
		zap.String("kind", string(kind)),
		zap.String("id", id),
		zap.String("by", sess.Identity().Email),
	)
	return nil
}

// Delete removes the item keyed by id
func (s *ReferenceService) Delete(ctx context.Context, sess *Session, kind ReferenceKind, id string) error {
	res, err := s.resource(sess, kind)
	if err != nil {
		return err
	}
	if strings.TrimSpace(id) == "" {
		return domain.MissingField("id")
	}
	if err := s.api.Delete(ctx, sess.Token(), res, id); err != nil {
		return sess.Guard(ctx, err)
	}
	s.logger.Info("reference deleted",
		zap.String("kind", string(kind)),
		zap.String("id", id),
		zap.String("by", sess.Identity().Email),
	)
	return nil
}

func (s *ReferenceService) resource(sess *Session, kind ReferenceKind) (upstream.Resource, error) {
	if !sess.Authenticated() {
		return upstream.Resource{}, domain.ErrNoSession
	}
	res, ok := referenceResources[kind]
	if !ok {
		return upstream.Resource{}, fmt.Errorf("%w: unknown reference %q", domain.ErrInvalidInput, kind)
	}
	return res, nil
}
