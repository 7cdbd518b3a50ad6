package service

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"procurement/internal/authz"
	"procurement/internal/identity"
	"procurement/internal/model"
	"procurement/internal/repository"
	"procurement/internal/websocket"
	"procurement/pkg/apperr"
	"procurement/pkg/csvexport"
)

// --- DTOs ---

type SelectedProduct struct {
	ID       uuid.UUID `json:"id"`
	Quantity int64     `json:"quantity"`
}

type NewRequestRequest struct {
	RefNo            *uuid.UUID        `json:"ref_no"`
	SelectedProducts []SelectedProduct `json:"selected_products"`
}

type NewRequestResponse struct {
	RefNo uuid.UUID `json:"ref_no"`
}

type UpdateRequestRequest struct {
	Status string `json:"status"`
}

type UpdateRequestResponse struct {
	RefNo  uuid.UUID `json:"ref_no"`
	Status string    `json:"status"`
}

type RequestDetailResponse struct {
	Qty                  int64           `json:"quantity"`
	ProductDisplayName   string          `json:"product_name"`
	ProductPrice         decimal.Decimal `json:"product_price"`
	ProductPriceCurrency string          `json:"product_currency"`
}

type RequestResponse struct {
	RefNo          uuid.UUID               `json:"ref_no"`
	RequestStatus  string                  `json:"request_status"`
	UserEmail      string                  `json:"user_email"`
	RequestDetails []RequestDetailResponse `json:"request_details"`
}

type RequestsResponse struct {
	Requests []RequestResponse `json:"requests"`
}

// Notifier pushes request lifecycle events to connected subscribers.
type Notifier interface {
	Notify(ev websocket.Event)
}

// RequestService is the request versioning engine. A logical request
// is a chain of revisions sharing one RefNo; amending appends a new
// revision and moves the IsCurrent flag forward.
type RequestService interface {
	Create(ctx context.Context, caller identity.Identity, req NewRequestRequest) (*NewRequestResponse, error)
	Update(ctx context.Context, refNo string, req UpdateRequestRequest) (*UpdateRequestResponse, error)
	GetAll(ctx context.Context, caller identity.Identity) (*RequestsResponse, error)
	GetAllAsCsv(ctx context.Context, caller identity.Identity) ([]csvexport.RequestRow, error)
	Delete(ctx context.Context, caller identity.Identity, refNo string) error
}

type requestService struct {
	requests repository.RequestRepository
	products repository.ProductRepository
	users    repository.UserRepository
	refData  repository.RefDataRepository
	tx       repository.TransactionManager
	notifier Notifier
	logger   *zap.Logger
}

func NewRequestService(
	requests repository.RequestRepository,
	products repository.ProductRepository,
	users repository.UserRepository,
	refData repository.RefDataRepository,
	tx repository.TransactionManager,
	notifier Notifier,
	logger *zap.Logger,
) RequestService {
	return &requestService{
		requests: requests,
		products: products,
		users:    users,
		refData:  refData,
		tx:       tx,
		notifier: notifier,
		logger:   logger,
	}
}

func (s *requestService) notify(ev websocket.Event) {
	if s.notifier != nil {
		s.notifier.Notify(ev)
	}
}

// Create inserts a new revision. Without a RefNo it starts a fresh
// chain; with one it supersedes the chain's current revision, which
// only the original creator may do. The supersession flip, the new
// revision row and its detail rows land in one transaction.
//
// Two concurrent creates on the same RefNo can both read the same
// current revision before either commits; the window is part of the
// documented behavior and is not closed with a row-version check.
func (s *requestService) Create(ctx context.Context, caller identity.Identity, req NewRequestRequest) (*NewRequestResponse, error) {
	const title = "Unable to create request"

	if len(req.SelectedProducts) == 0 {
		return nil, apperr.MissingMandatoryField.New(title, http.StatusBadRequest)
	}
	for _, sp := range req.SelectedProducts {
		if sp.Quantity < 0 {
			return nil, apperr.NegativeValue.New(title, http.StatusBadRequest)
		}
	}

	var refNo uuid.UUID
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if req.RefNo == nil {
			// Unknown refNo. Assign a new one.
			refNo = uuid.New()
		} else {
			// Known refNo: the chain's current revision stops being
			// current before the new one lands.
			refNo = *req.RefNo
			existing, err := s.requests.CurrentByRefNo(txCtx, refNo)
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.InvalidRefNo.New(title, http.StatusBadRequest)
			}
			if err != nil {
				return err
			}
			if !authz.CanAmendRequest(caller, existing.User.Email) {
				return apperr.UserNotAllowed.New(title, http.StatusForbidden)
			}

			existing.IsCurrent = 0
			if err := s.requests.Update(txCtx, existing); err != nil {
				return err
			}
		}

		owner, err := s.users.GetByEmail(txCtx, caller.Email)
		if err != nil {
			return err
		}

		newRequest := &model.Request{
			RefNo:           refNo,
			IsCurrent:       1,
			UserID:          owner.ID,
			RequestStatusID: model.RequestStatusPending,
		}

		details := make([]model.RequestDetail, 0, len(req.SelectedProducts))
		for _, sp := range req.SelectedProducts {
			product, err := s.products.GetByID(txCtx, sp.ID)
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.InvalidProductID.New(title, http.StatusBadRequest)
			}
			if err != nil {
				return err
			}
			details = append(details, model.RequestDetail{
				ProductID: product.ID,
				Qty:       sp.Quantity,
			})
		}

		if err := s.requests.Create(txCtx, newRequest); err != nil {
			return err
		}
		for i := range details {
			details[i].RequestID = newRequest.ID
		}
		return s.requests.CreateDetails(txCtx, details)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("request revision created", zap.String("ref_no", refNo.String()), zap.String("user", caller.Email))
	s.notify(websocket.Event{Event: websocket.EventRequestCreated, RefNo: refNo.String(), Status: model.RequestStatusPending, UserEmail: caller.Email})

	return &NewRequestResponse{RefNo: refNo}, nil
}

// Update sets the status of the chain's current revision. Coordinator
// gating happens at the route.
func (s *requestService) Update(ctx context.Context, refNo string, req UpdateRequestRequest) (*UpdateRequestResponse, error) {
	const title = "Unable to update the request"

	if anyMissing(req.Status) {
		return nil, apperr.MissingMandatoryField.New(title, http.StatusBadRequest)
	}

	ok, err := s.refData.RequestStatusExists(ctx, req.Status)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.InvalidRequestStatusID.New(title, http.StatusBadRequest)
	}

	ref, err := uuid.Parse(refNo)
	if err != nil {
		return nil, apperr.InvalidRefNo.New(title, http.StatusBadRequest)
	}

	current, err := s.requests.CurrentByRefNo(ctx, ref)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.InvalidRefNo.New(title, http.StatusBadRequest)
	}
	if err != nil {
		return nil, err
	}

	current.RequestStatusID = req.Status
	if err := s.requests.Update(ctx, current); err != nil {
		return nil, err
	}

	s.logger.Info("request status updated", zap.String("ref_no", refNo), zap.String("status", req.Status))
	s.notify(websocket.Event{Event: websocket.EventRequestUpdated, RefNo: refNo, Status: req.Status, UserEmail: current.User.Email})

	return &UpdateRequestResponse{RefNo: current.RefNo, Status: current.RequestStatusID}, nil
}

// GetAll returns every current revision the caller may see: her own
// for the User role, all of them for Coordinators.
func (s *requestService) GetAll(ctx context.Context, caller identity.Identity) (*RequestsResponse, error) {
	requests, err := s.requests.ListCurrent(ctx, authz.VisibleOwner(caller))
	if err != nil {
		return nil, err
	}

	resp := &RequestsResponse{Requests: make([]RequestResponse, 0, len(requests))}
	for _, r := range requests {
		details := make([]RequestDetailResponse, 0, len(r.RequestDetails))
		for _, d := range r.RequestDetails {
			details = append(details, RequestDetailResponse{
				Qty:                  d.Qty,
				ProductDisplayName:   d.Product.DisplayName,
				ProductPrice:         d.Product.Price,
				ProductPriceCurrency: d.Product.PriceCurrency,
			})
		}
		resp.Requests = append(resp.Requests, RequestResponse{
			RefNo:          r.RefNo,
			RequestStatus:  r.RequestStatusID,
			UserEmail:      r.User.Email,
			RequestDetails: details,
		})
	}
	return resp, nil
}

// GetAllAsCsv returns the same visible set flattened to one row per
// (request, detail line) pair.
func (s *requestService) GetAllAsCsv(ctx context.Context, caller identity.Identity) ([]csvexport.RequestRow, error) {
	requests, err := s.requests.ListCurrent(ctx, authz.VisibleOwner(caller))
	if err != nil {
		return nil, err
	}

	rows := make([]csvexport.RequestRow, 0, len(requests))
	for _, r := range requests {
		for _, d := range r.RequestDetails {
			rows = append(rows, csvexport.RequestRow{
				RefNo:                r.RefNo,
				RequestStatus:        r.RequestStatusID,
				UserEmail:            r.User.Email,
				Qty:                  d.Qty,
				ProductDisplayName:   d.Product.DisplayName,
				ProductPrice:         d.Product.Price,
				ProductPriceCurrency: d.Product.PriceCurrency,
			})
		}
	}
	return rows, nil
}

// Delete purges the entire revision chain: every detail row, then
// every revision, in one transaction. A caller in the User role may
// only purge chains she fully owns.
func (s *requestService) Delete(ctx context.Context, caller identity.Identity, refNo string) error {
	const title = "Unable to delete the request"

	ref, err := uuid.Parse(refNo)
	if err != nil {
		return apperr.InvalidRefNo.New(title, http.StatusNotFound)
	}

	revisions, err := s.requests.AllByRefNo(ctx, ref)
	if err != nil {
		return err
	}
	if len(revisions) == 0 {
		return apperr.InvalidRefNo.New(title, http.StatusNotFound)
	}

	owners := make([]string, 0, len(revisions))
	for _, r := range revisions {
		owners = append(owners, r.User.Email)
	}
	if !authz.CanDeleteRequestChain(caller, owners) {
		return apperr.UserNotAllowed.New(title, http.StatusForbidden)
	}

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.requests.DeleteDetailsByRefNo(txCtx, ref); err != nil {
			return err
		}
		return s.requests.DeleteByRefNo(txCtx, ref)
	})
	if err != nil {
		return err
	}

	s.logger.Info("request chain deleted", zap.String("ref_no", refNo), zap.Int("revisions", len(revisions)))
	s.notify(websocket.Event{Event: websocket.EventRequestDeleted, RefNo: refNo})

	return nil
}
