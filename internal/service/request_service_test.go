package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"procurement/internal/database"
	"procurement/internal/model"
	"procurement/internal/websocket"
	"procurement/pkg/apperr"
)

func TestCreateRequestFreshChain(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, db, "a@example.com", model.RoleUser, model.UserStatusApproved)
	notifier := &fakeNotifier{}
	svc := newRequestSvcForTest(db, notifier)

	resp, err := svc.Create(context.Background(), asIdentity("a@example.com", model.RoleUser), NewRequestRequest{
		SelectedProducts: []SelectedProduct{
			{ID: database.ProductID1, Quantity: 9},
			{ID: database.ProductID2, Quantity: 2},
		},
	})
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, resp.RefNo)

	requireOneCurrent(t, db, resp.RefNo)
	require.EqualValues(t, 1, countRevisions(t, db, resp.RefNo))

	var details []model.RequestDetail
	require.NoError(t, db.Find(&details).Error)
	require.Len(t, details, 2)

	require.Len(t, notifier.events, 1)
	assert.Equal(t, websocket.EventRequestCreated, notifier.events[0].Event)
	assert.Equal(t, resp.RefNo.String(), notifier.events[0].RefNo)
}

func TestCreateRequestRevisionChain(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, db, "a@example.com", model.RoleUser, model.UserStatusApproved)
	svc := newRequestSvcForTest(db, nil)
	caller := asIdentity("a@example.com", model.RoleUser)

	first, err := svc.Create(context.Background(), caller, NewRequestRequest{
		SelectedProducts: []SelectedProduct{
			{ID: database.ProductID1, Quantity: 9},
			{ID: database.ProductID2, Quantity: 2},
		},
	})
	require.NoError(t, err)

	second, err := svc.Create(context.Background(), caller, NewRequestRequest{
		RefNo:            &first.RefNo,
		SelectedProducts: []SelectedProduct{{ID: database.ProductID3, Quantity: 15}},
	})
	require.NoError(t, err)
	assert.Equal(t, first.RefNo, second.RefNo)

	requireOneCurrent(t, db, first.RefNo)
	require.EqualValues(t, 2, countRevisions(t, db, first.RefNo))

	// The superseded revision keeps its detail lines; the current one
	// carries only the new content.
	var current model.Request
	require.NoError(t, db.Preload("RequestDetails").
		First(&current, "ref_no = ? AND is_current = 1", first.RefNo).Error)
	require.Len(t, current.RequestDetails, 1)
	assert.Equal(t, database.ProductID3, current.RequestDetails[0].ProductID)
	assert.EqualValues(t, 15, current.RequestDetails[0].Qty)

	var old model.Request
	require.NoError(t, db.Preload("RequestDetails").
		First(&old, "ref_no = ? AND is_current = 0", first.RefNo).Error)
	require.Len(t, old.RequestDetails, 2)
}

func TestCreateRequestValidation(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, db, "a@example.com", model.RoleUser, model.UserStatusApproved)
	svc := newRequestSvcForTest(db, nil)
	caller := asIdentity("a@example.com", model.RoleUser)

	_, err := svc.Create(context.Background(), caller, NewRequestRequest{})
	requireAppErr(t, err, apperr.MissingMandatoryField, http.StatusBadRequest)

	_, err = svc.Create(context.Background(), caller, NewRequestRequest{
		SelectedProducts: []SelectedProduct{{ID: database.ProductID1, Quantity: -1}},
	})
	requireAppErr(t, err, apperr.NegativeValue, http.StatusBadRequest)

	_, err = svc.Create(context.Background(), caller, NewRequestRequest{
		SelectedProducts: []SelectedProduct{{ID: uuid.New(), Quantity: 1}},
	})
	requireAppErr(t, err, apperr.InvalidProductID, http.StatusBadRequest)

	unknown := uuid.New()
	_, err = svc.Create(context.Background(), caller, NewRequestRequest{
		RefNo:            &unknown,
		SelectedProducts: []SelectedProduct{{ID: database.ProductID1, Quantity: 1}},
	})
	requireAppErr(t, err, apperr.InvalidRefNo, http.StatusBadRequest)
}

func TestCreateRequestInvalidProductRollsBack(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, db, "a@example.com", model.RoleUser, model.UserStatusApproved)
	svc := newRequestSvcForTest(db, nil)
	caller := asIdentity("a@example.com", model.RoleUser)

	first, err := svc.Create(context.Background(), caller, NewRequestRequest{
		SelectedProducts: []SelectedProduct{{ID: database.ProductID1, Quantity: 1}},
	})
	require.NoError(t, err)

	// The amend fails mid-transaction after the supersession flip; the
	// rollback must restore the original revision as current.
	_, err = svc.Create(context.Background(), caller, NewRequestRequest{
		RefNo: &first.RefNo,
		SelectedProducts: []SelectedProduct{
			{ID: database.ProductID2, Quantity: 1},
			{ID: uuid.New(), Quantity: 1},
		},
	})
	requireAppErr(t, err, apperr.InvalidProductID, http.StatusBadRequest)

	requireOneCurrent(t, db, first.RefNo)
	require.EqualValues(t, 1, countRevisions(t, db, first.RefNo))
}

func TestCreateRequestForeignChainForbidden(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, db, "a@example.com", model.RoleUser, model.UserStatusApproved)
	seedUser(t, db, "b@example.com", model.RoleUser, model.UserStatusApproved)
	svc := newRequestSvcForTest(db, nil)

	first, err := svc.Create(context.Background(), asIdentity("a@example.com", model.RoleUser), NewRequestRequest{
		SelectedProducts: []SelectedProduct{{ID: database.ProductID1, Quantity: 1}},
	})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), asIdentity("b@example.com", model.RoleUser), NewRequestRequest{
		RefNo:            &first.RefNo,
		SelectedProducts: []SelectedProduct{{ID: database.ProductID2, Quantity: 1}},
	})
	requireAppErr(t, err, apperr.UserNotAllowed, http.StatusForbidden)

	requireOneCurrent(t, db, first.RefNo)
	require.EqualValues(t, 1, countRevisions(t, db, first.RefNo))
}

func TestUpdateRequestStatus(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, db, "a@example.com", model.RoleUser, model.UserStatusApproved)
	notifier := &fakeNotifier{}
	svc := newRequestSvcForTest(db, notifier)

	created, err := svc.Create(context.Background(), asIdentity("a@example.com", model.RoleUser), NewRequestRequest{
		SelectedProducts: []SelectedProduct{{ID: database.ProductID1, Quantity: 1}},
	})
	require.NoError(t, err)

	resp, err := svc.Update(context.Background(), created.RefNo.String(), UpdateRequestRequest{Status: model.RequestStatusApproved})
	require.NoError(t, err)
	assert.Equal(t, created.RefNo, resp.RefNo)
	assert.Equal(t, model.RequestStatusApproved, resp.Status)

	var stored model.Request
	require.NoError(t, db.First(&stored, "ref_no = ? AND is_current = 1", created.RefNo).Error)
	assert.Equal(t, model.RequestStatusApproved, stored.RequestStatusID)

	require.Len(t, notifier.events, 2)
	assert.Equal(t, websocket.EventRequestUpdated, notifier.events[1].Event)
}

func TestUpdateRequestValidation(t *testing.T) {
	db := newTestDB(t)
	svc := newRequestSvcForTest(db, nil)

	_, err := svc.Update(context.Background(), uuid.NewString(), UpdateRequestRequest{})
	requireAppErr(t, err, apperr.MissingMandatoryField, http.StatusBadRequest)

	_, err = svc.Update(context.Background(), uuid.NewString(), UpdateRequestRequest{Status: "Frozen"})
	requireAppErr(t, err, apperr.InvalidRequestStatusID, http.StatusBadRequest)

	_, err = svc.Update(context.Background(), "not-a-uuid", UpdateRequestRequest{Status: model.RequestStatusApproved})
	requireAppErr(t, err, apperr.InvalidRefNo, http.StatusBadRequest)

	_, err = svc.Update(context.Background(), uuid.NewString(), UpdateRequestRequest{Status: model.RequestStatusApproved})
	requireAppErr(t, err, apperr.InvalidRefNo, http.StatusBadRequest)
}

func TestGetAllVisibility(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, db, "a@example.com", model.RoleUser, model.UserStatusApproved)
	seedUser(t, db, "b@example.com", model.RoleUser, model.UserStatusApproved)
	svc := newRequestSvcForTest(db, nil)

	_, err := svc.Create(context.Background(), asIdentity("a@example.com", model.RoleUser), NewRequestRequest{
		SelectedProducts: []SelectedProduct{{ID: database.ProductID1, Quantity: 9}},
	})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), asIdentity("b@example.com", model.RoleUser), NewRequestRequest{
		SelectedProducts: []SelectedProduct{{ID: database.ProductID2, Quantity: 2}},
	})
	require.NoError(t, err)

	// A User sees only her own chains.
	own, err := svc.GetAll(context.Background(), asIdentity("a@example.com", model.RoleUser))
	require.NoError(t, err)
	require.Len(t, own.Requests, 1)
	assert.Equal(t, "a@example.com", own.Requests[0].UserEmail)
	require.Len(t, own.Requests[0].RequestDetails, 1)
	assert.Equal(t, "Product1", own.Requests[0].RequestDetails[0].ProductDisplayName)
	assert.Equal(t, "Euro", own.Requests[0].RequestDetails[0].ProductPriceCurrency)
	assert.EqualValues(t, 9, own.Requests[0].RequestDetails[0].Qty)

	// A Coordinator sees everything.
	all, err := svc.GetAll(context.Background(), asIdentity("c@example.com", model.RoleCoordinator))
	require.NoError(t, err)
	require.Len(t, all.Requests, 2)
}

func TestGetAllOmitsSupersededRevisions(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, db, "a@example.com", model.RoleUser, model.UserStatusApproved)
	svc := newRequestSvcForTest(db, nil)
	caller := asIdentity("a@example.com", model.RoleUser)

	first, err := svc.Create(context.Background(), caller, NewRequestRequest{
		SelectedProducts: []SelectedProduct{{ID: database.ProductID1, Quantity: 1}},
	})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), caller, NewRequestRequest{
		RefNo:            &first.RefNo,
		SelectedProducts: []SelectedProduct{{ID: database.ProductID2, Quantity: 4}},
	})
	require.NoError(t, err)

	resp, err := svc.GetAll(context.Background(), caller)
	require.NoError(t, err)
	require.Len(t, resp.Requests, 1)
	require.Len(t, resp.Requests[0].RequestDetails, 1)
	assert.Equal(t, "Product2", resp.Requests[0].RequestDetails[0].ProductDisplayName)
}

func TestGetAllAsCsvFlattens(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, db, "a@example.com", model.RoleUser, model.UserStatusApproved)
	svc := newRequestSvcForTest(db, nil)
	caller := asIdentity("a@example.com", model.RoleUser)

	created, err := svc.Create(context.Background(), caller, NewRequestRequest{
		SelectedProducts: []SelectedProduct{
			{ID: database.ProductID1, Quantity: 9},
			{ID: database.ProductID2, Quantity: 2},
		},
	})
	require.NoError(t, err)

	rows, err := svc.GetAllAsCsv(context.Background(), caller)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	for _, row := range rows {
		assert.Equal(t, created.RefNo, row.RefNo)
		assert.Equal(t, model.RequestStatusPending, row.RequestStatus)
		assert.Equal(t, "a@example.com", row.UserEmail)
	}
}

func TestDeleteChainPurgesAllRevisions(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, db, "a@example.com", model.RoleUser, model.UserStatusApproved)
	notifier := &fakeNotifier{}
	svc := newRequestSvcForTest(db, notifier)
	caller := asIdentity("a@example.com", model.RoleUser)

	first, err := svc.Create(context.Background(), caller, NewRequestRequest{
		SelectedProducts: []SelectedProduct{{ID: database.ProductID1, Quantity: 1}},
	})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), caller, NewRequestRequest{
		RefNo:            &first.RefNo,
		SelectedProducts: []SelectedProduct{{ID: database.ProductID2, Quantity: 2}},
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), asIdentity("c@example.com", model.RoleCoordinator), first.RefNo.String()))

	assert.EqualValues(t, 0, countRevisions(t, db, first.RefNo))
	var details int64
	require.NoError(t, db.Model(&model.RequestDetail{}).Count(&details).Error)
	assert.Zero(t, details)

	last := notifier.events[len(notifier.events)-1]
	assert.Equal(t, websocket.EventRequestDeleted, last.Event)
}

func TestDeleteChainForeignOwnerForbidden(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, db, "a@example.com", model.RoleUser, model.UserStatusApproved)
	seedUser(t, db, "b@example.com", model.RoleUser, model.UserStatusApproved)
	svc := newRequestSvcForTest(db, nil)

	first, err := svc.Create(context.Background(), asIdentity("a@example.com", model.RoleUser), NewRequestRequest{
		SelectedProducts: []SelectedProduct{{ID: database.ProductID1, Quantity: 1}},
	})
	require.NoError(t, err)

	err = svc.Delete(context.Background(), asIdentity("b@example.com", model.RoleUser), first.RefNo.String())
	requireAppErr(t, err, apperr.UserNotAllowed, http.StatusForbidden)

	// Storage untouched.
	require.EqualValues(t, 1, countRevisions(t, db, first.RefNo))
	requireOneCurrent(t, db, first.RefNo)
}

func TestDeleteChainNotFound(t *testing.T) {
	db := newTestDB(t)
	svc := newRequestSvcForTest(db, nil)
	coordinator := asIdentity("c@example.com", model.RoleCoordinator)

	err := svc.Delete(context.Background(), coordinator, "not-a-uuid")
	requireAppErr(t, err, apperr.InvalidRefNo, http.StatusNotFound)

	err = svc.Delete(context.Background(), coordinator, uuid.NewString())
	requireAppErr(t, err, apperr.InvalidRefNo, http.StatusNotFound)
}
