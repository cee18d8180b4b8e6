package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/zoolspeed/internal/clock"
	companydomain "github.com/smallbiznis/zoolspeed/internal/company/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  companydomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  companydomain.Repository
}

func New(p Params) companydomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("company.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req companydomain.CreateRequest) (*companydomain.Response, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, companydomain.ErrInvalidName
	}

	now := s.clock.Now()
	c := &companydomain.Company{
		ID:               s.genID.Generate(),
		Name:             name,
		CommercialNumber: trimmed(req.CommercialNumber),
		VATNumber:        trimmed(req.VATNumber),
		Email:            trimmed(req.Email),
		Phone:            trimmed(req.Phone),
		Address:          trimmed(req.Address),
		IsActive:         true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.repo.Insert(ctx, s.db, c); err != nil {
		return nil, err
	}

	s.log.Info("company created", zap.String("company_id", c.ID.String()))
	resp := companydomain.ToResponse(c)
	return &resp, nil
}

func (s *Service) Get(ctx context.Context, id string) (*companydomain.Response, error) {
	companyID, err := ParseID(id)
	if err != nil {
		return nil, err
	}

	c, err := s.repo.FindByID(ctx, s.db, companyID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, companydomain.ErrNotFound
	}

	resp := companydomain.ToResponse(c)
	return &resp, nil
}

func (s *Service) List(ctx context.Context, req companydomain.ListRequest) ([]companydomain.Response, error) {
	items, err := s.repo.List(ctx, s.db, companydomain.ListFilter{
		Name:     req.Name,
		IsActive: req.IsActive,
	})
	if err != nil {
		return nil, err
	}

	resp := make([]companydomain.Response, 0, len(items))
	for i := range items {
		resp = append(resp, companydomain.ToResponse(&items[i]))
	}
	return resp, nil
}

// ParseID parses a company id from its decimal string form.
func ParseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id <= 0 {
		return 0, companydomain.ErrInvalidID
	}
	return id, nil
}

func trimmed(value *string) *string {
	if value == nil {
		return nil
	}
	v := strings.TrimSpace(*value)
	if v == "" {
		return nil
	}
	return &v
}
