package service

import (
	"context"
	"time"

	"github.com/brickwell/healthcore/internal/allocator"
	"github.com/brickwell/healthcore/internal/clock"
	"github.com/brickwell/healthcore/internal/domainerr"
	"github.com/brickwell/healthcore/internal/export"
	memberdomain "github.com/brickwell/healthcore/internal/member/domain"
	"github.com/brickwell/healthcore/internal/store"
	"github.com/google/uuid"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

type Params struct {
	fx.In

	Store *store.Store
	Alloc *allocator.Allocator
	Clock clock.Clock
	Log   *zap.Logger
}

// Service owns member writes. Every mutation that touches a member row
// also appends the matching audit row in the same atomic unit.
type Service struct {
	store *store.Store
	alloc *allocator.Allocator
	clock clock.Clock
	log   *zap.Logger
}

func NewService(p Params) *Service {
	return &Service{
		store: p.Store,
		alloc: p.Alloc,
		clock: p.Clock,
		log:   p.Log.Named("member.service"),
	}
}

// CreateMemberInput carries the caller-supplied member fields. The
// identifier and member number are allocated here.
type CreateMemberInput struct {
	Title          *string
	FirstName      string
	LastName       string
	DateOfBirth    time.Time
	Gender         string
	MaritalStatus  *string
	Email          *string
	MobilePhone    *string
	HomePhone      *string
	AddressLine1   string
	AddressLine2   *string
	Suburb         string
	State          string
	Postcode       string
	MedicareNumber *string
	MedicareExpiry *time.Time
	JoinDate       time.Time
}

func (s *Service) CreateMember(ctx context.Context, in CreateMemberInput) (*memberdomain.Member, error) {
	if in.FirstName == "" || in.LastName == "" {
		return nil, domainerr.Validation("member", "name", "first and last name are required")
	}
	if in.DateOfBirth.IsZero() {
		return nil, domainerr.Validation("member", "date_of_birth", "required")
	}
	if in.JoinDate.Before(in.DateOfBirth) {
		return nil, domainerr.Validation("member", "join_date", "precedes date of birth")
	}
	if in.AddressLine1 == "" || in.Suburb == "" || in.State == "" || in.Postcode == "" {
		return nil, domainerr.Validation("member", "address", "incomplete address")
	}

	id, number, err := s.alloc.Allocate(allocator.KindMember)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now().UTC()
	row := &memberdomain.Member{
		ID:             id,
		MemberNumber:   number,
		Title:          in.Title,
		FirstName:      in.FirstName,
		LastName:       in.LastName,
		DateOfBirth:    in.DateOfBirth,
		Gender:         in.Gender,
		MaritalStatus:  in.MaritalStatus,
		Email:          in.Email,
		MobilePhone:    in.MobilePhone,
		HomePhone:      in.HomePhone,
		AddressLine1:   in.AddressLine1,
		AddressLine2:   in.AddressLine2,
		Suburb:         in.Suburb,
		State:          in.State,
		Postcode:       in.Postcode,
		MedicareNumber: in.MedicareNumber,
		MedicareExpiry: in.MedicareExpiry,
		JoinDate:       in.JoinDate,
		Status:         memberdomain.MemberActive,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	err = s.store.RunUnit(ctx, "member.create", func(u *store.UnitOfWork) error {
		return u.Create(memberdomain.Member{}.TableName(), id.String(), row, exportedMember(row))
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("member created", zap.String("member_id", id.String()), zap.String("member_number", number))
	return row, nil
}

// ChangeAddress updates the member's address and audits the change.
func (s *Service) ChangeAddress(ctx context.Context, memberID uuid.UUID, line1 string, line2 *string, suburb, state, postcode string) (*memberdomain.Member, error) {
	if line1 == "" || suburb == "" || state == "" || postcode == "" {
		return nil, domainerr.Validation("member", "address", "incomplete address")
	}
	return s.applyUpdate(ctx, memberID, memberdomain.ChangeAddress,
		func(m *memberdomain.Member) (datatypes.JSONMap, datatypes.JSONMap) {
			prev := datatypes.JSONMap{
				"address_line_1": m.AddressLine1,
				"address_line_2": strOrNil(m.AddressLine2),
				"suburb":         m.Suburb,
				"state":          m.State,
				"postcode":       m.Postcode,
			}
			m.AddressLine1 = line1
			m.AddressLine2 = line2
			m.Suburb = suburb
			m.State = state
			m.Postcode = postcode
			next := datatypes.JSONMap{
				"address_line_1": line1,
				"address_line_2": strOrNil(line2),
				"suburb":         suburb,
				"state":          state,
				"postcode":       postcode,
			}
			return prev, next
		})
}

// ChangeContact updates email and phone numbers.
func (s *Service) ChangeContact(ctx context.Context, memberID uuid.UUID, email, mobile, home *string) (*memberdomain.Member, error) {
	return s.applyUpdate(ctx, memberID, memberdomain.ChangeContact,
		func(m *memberdomain.Member) (datatypes.JSONMap, datatypes.JSONMap) {
			prev := datatypes.JSONMap{
				"email":        strOrNil(m.Email),
				"mobile_phone": strOrNil(m.MobilePhone),
				"home_phone":   strOrNil(m.HomePhone),
			}
			m.Email = email
			m.MobilePhone = mobile
			m.HomePhone = home
			next := datatypes.JSONMap{
				"email":        strOrNil(email),
				"mobile_phone": strOrNil(mobile),
				"home_phone":   strOrNil(home),
			}
			return prev, next
		})
}

// ChangeName updates the member's legal name.
func (s *Service) ChangeName(ctx context.Context, memberID uuid.UUID, firstName, lastName string) (*memberdomain.Member, error) {
	if firstName == "" || lastName == "" {
		return nil, domainerr.Validation("member", "name", "first and last name are required")
	}
	return s.applyUpdate(ctx, memberID, memberdomain.ChangeName,
		func(m *memberdomain.Member) (datatypes.JSONMap, datatypes.JSONMap) {
			prev := datatypes.JSONMap{"first_name": m.FirstName, "last_name": m.LastName}
			m.FirstName = firstName
			m.LastName = lastName
			return prev, datatypes.JSONMap{"first_name": firstName, "last_name": lastName}
		})
}

// ChangeMaritalStatus updates the member's marital status.
func (s *Service) ChangeMaritalStatus(ctx context.Context, memberID uuid.UUID, status string) (*memberdomain.Member, error) {
	if status == "" {
		return nil, domainerr.Validation("member", "marital_status", "required")
	}
	return s.applyUpdate(ctx, memberID, memberdomain.ChangeMaritalStatus,
		func(m *memberdomain.Member) (datatypes.JSONMap, datatypes.JSONMap) {
			prev := datatypes.JSONMap{"marital_status": strOrNil(m.MaritalStatus)}
			m.MaritalStatus = &status
			return prev, datatypes.JSONMap{"marital_status": status}
		})
}

// MarkDeceased records the member's death. The flag and date move
// together; a deceased member accepts no further updates.
func (s *Service) MarkDeceased(ctx context.Context, memberID uuid.UUID, deceasedDate time.Time) (*memberdomain.Member, error) {
	if deceasedDate.IsZero() {
		return nil, domainerr.Validation("member", "deceased_date", "required")
	}
	return s.applyUpdate(ctx, memberID, memberdomain.ChangeDeceased,
		func(m *memberdomain.Member) (datatypes.JSONMap, datatypes.JSONMap) {
			prev := datatypes.JSONMap{"deceased_flag": m.DeceasedFlag, "status": string(m.Status)}
			m.DeceasedFlag = true
			m.DeceasedDate = &deceasedDate
			m.Status = memberdomain.MemberDeceased
			return prev, datatypes.JSONMap{
				"deceased_flag": true,
				"deceased_date": deceasedDate.Format("2006-01-02"),
				"status":        string(memberdomain.MemberDeceased),
			}
		})
}

// applyUpdate loads the member, applies the mutation, and writes the
// member row and its audit row in one unit.
func (s *Service) applyUpdate(ctx context.Context, memberID uuid.UUID, changeType memberdomain.ChangeType, mutate func(*memberdomain.Member) (datatypes.JSONMap, datatypes.JSONMap)) (*memberdomain.Member, error) {
	var updated memberdomain.Member
	now := s.clock.Now().UTC()
	auditID := s.alloc.NewID()

	err := s.store.RunUnit(ctx, "member.update", func(u *store.UnitOfWork) error {
		var m memberdomain.Member
		if err := u.Tx().First(&m, "member_id = ?", memberID).Error; err != nil {
			return &domainerr.ReferenceMissError{Kind: "member", ID: memberID.String()}
		}
		if m.DeceasedFlag && changeType != memberdomain.ChangeDeceased {
			return domainerr.Validation("member", "status", "member is deceased")
		}

		prev, next := mutate(&m)
		m.UpdatedAt = now
		if err := u.Update(m.TableName(), m.ID.String(), &m, exportedMember(&m)); err != nil {
			return err
		}

		audit := memberdomain.MemberUpdate{
			ID:             auditID,
			MemberID:       m.ID,
			UpdateDate:     now,
			ChangeType:     changeType,
			PreviousValues: prev,
			NewValues:      next,
			CreatedAt:      now,
		}
		if err := u.Append(audit.TableName(), audit.ID.String(), &audit, exportedMemberUpdate(&audit)); err != nil {
			return err
		}

		updated = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func exportedMember(m *memberdomain.Member) map[string]any {
	return map[string]any{
		"member_id":     m.ID,
		"member_number": m.MemberNumber,
		"first_name":    m.FirstName,
		"last_name":     m.LastName,
		"date_of_birth": export.NewDate(m.DateOfBirth),
		"gender":        m.Gender,
		"email":         m.Email,
		"mobile_phone":  m.MobilePhone,
		"state":         m.State,
		"postcode":      m.Postcode,
		"join_date":     export.NewDate(m.JoinDate),
		"status":        string(m.Status),
		"deceased_flag": m.DeceasedFlag,
		"updated_at":    m.UpdatedAt,
	}
}

func exportedMemberUpdate(a *memberdomain.MemberUpdate) map[string]any {
	return map[string]any{
		"member_update_id": a.ID,
		"member_id":        a.MemberID,
		"update_date":      export.NewDate(a.UpdateDate),
		"change_type":      string(a.ChangeType),
		"created_at":       a.CreatedAt,
	}
}

func strOrNil(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
