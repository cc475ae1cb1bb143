package service

import (
	"testing"

	"go-wms/internal/apperr"
	"go-wms/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *fixture) seedOutbound(t *testing.T, paymentType string, qty int) (*model.Outbound, *model.Product, *model.Location) {
	t.Helper()
	product := f.seedProduct(t, "SKU-OUT")
	location := f.seedLocation(t, "A-01", 100)
	f.seedStock(t, product.ID, location.ID, qty*2)

	ob, err := f.outboundSvc.Create(&CreateOutboundRequest{
		CustomerName: "Acme",
		PaymentType:  paymentType,
		Items: []CreateOutboundItemRequest{
			{ProductID: product.ID, LocationID: location.ID, OrderedQty: qty},
		},
	}, testActor)
	require.NoError(t, err)
	return ob, product, location
}

func (f *fixture) pickAll(t *testing.T, ob *model.Outbound) *model.Outbound {
	t.Helper()
	lines := make([]PickLine, 0, len(ob.Items))
	for _, item := range ob.Items {
		lines = append(lines, PickLine{ItemID: item.ID, Quantity: item.OrderedQty})
	}
	picked, err := f.outboundSvc.Pick(ob.ID, &PickRequest{Lines: lines}, testActor)
	require.NoError(t, err)
	return picked
}

func TestOutbound_HappyPathCOD(t *testing.T) {
	f := newFixture(t)
	ob, product, location := f.seedOutbound(t, "COD", 10)
	assert.Equal(t, model.OutboundPending, ob.Status)

	ob, err := f.outboundSvc.Allocate(ob.ID, testActor)
	require.NoError(t, err)
	assert.Equal(t, model.OutboundPicking, ob.Status)

	ob = f.pickAll(t, ob)
	assert.Equal(t, model.OutboundPicked, ob.Status)
	assert.Equal(t, 10, ob.Items[0].PickedQty)

	inv := f.getInventory(t, product.ID, location.ID)
	assert.Equal(t, 10, inv.QtyReserved)
	assert.Equal(t, 10, inv.QtyAvailable)

	ob, err = f.outboundSvc.Pack(ob.ID, testActor)
	require.NoError(t, err)
	assert.Equal(t, model.OutboundPacked, ob.Status)

	ob, err = f.outboundSvc.Ship(ob.ID, testActor)
	require.NoError(t, err)
	assert.Equal(t, model.OutboundShipped, ob.Status)
	require.NotNil(t, ob.ShipDate)
	assert.Equal(t, 10, ob.Items[0].ShippedQty)

	inv = f.getInventory(t, product.ID, location.ID)
	assert.Equal(t, 10, inv.QtyOnHand)
	assert.Equal(t, 0, inv.QtyReserved)
	assert.Equal(t, 10, inv.QtyAvailable)

	// Shipping opens the tracking record.
	delivery, err := f.deliverySvc.GetByOutbound(ob.ID)
	require.NoError(t, err)
	assert.Equal(t, model.DeliveryPending, delivery.Status)
	require.Len(t, delivery.Events, 1)
}

func TestOutbound_SkipAllocateStraightToPick(t *testing.T) {
	f := newFixture(t)
	ob, _, _ := f.seedOutbound(t, "COD", 5)

	// Picking directly from PENDING is allowed.
	ob = f.pickAll(t, ob)
	assert.Equal(t, model.OutboundPicked, ob.Status)
}

func TestOutbound_ShipRequiresPacked(t *testing.T) {
	f := newFixture(t)
	ob, _, _ := f.seedOutbound(t, "COD", 5)
	ob = f.pickAll(t, ob)

	_, err := f.outboundSvc.Ship(ob.ID, testActor)
	require.Error(t, err)
	assert.Equal(t, apperr.CodeInvalidTransition, apperr.CodeOf(err))
}

func TestOutbound_PackRequiresPicked(t *testing.T) {
	f := newFixture(t)
	ob, _, _ := f.seedOutbound(t, "COD", 5)

	_, err := f.outboundSvc.Pack(ob.ID, testActor)
	require.Error(t, err)
	assert.Equal(t, apperr.CodeInvalidTransition, apperr.CodeOf(err))
}

func TestOutbound_PickAllOrNothing(t *testing.T) {
	f := newFixture(t)
	product := f.seedProduct(t, "SKU-A")
	other := f.seedProduct(t, "SKU-B")
	location := f.seedLocation(t, "A-01", 100)
	f.seedStock(t, product.ID, location.ID, 20)
	f.seedStock(t, other.ID, location.ID, 20)

	ob, err := f.outboundSvc.Create(&CreateOutboundRequest{
		PaymentType: "COD",
		Items: []CreateOutboundItemRequest{
			{ProductID: product.ID, LocationID: location.ID, OrderedQty: 5},
			{ProductID: other.ID, LocationID: location.ID, OrderedQty: 5},
		},
	}, testActor)
	require.NoError(t, err)

	// Second line over-picks; the first line's reservation must not survive.
	_, err = f.outboundSvc.Pick(ob.ID, &PickRequest{Lines: []PickLine{
		{ItemID: ob.Items[0].ID, Quantity: 5},
		{ItemID: ob.Items[1].ID, Quantity: 6},
	}}, testActor)
	require.Error(t, err)
	assert.Equal(t, apperr.CodeValidation, apperr.CodeOf(err))

	inv := f.getInventory(t, product.ID, location.ID)
	assert.Equal(t, 0, inv.QtyReserved)

	ob, err = f.outboundSvc.Get(ob.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OutboundPending, ob.Status)
	assert.Equal(t, 0, ob.Items[0].PickedQty)
}

func TestOutbound_PickUnknownItemNotFound(t *testing.T) {
	f := newFixture(t)
	ob, _, _ := f.seedOutbound(t, "COD", 5)

	_, err := f.outboundSvc.Pick(ob.ID, &PickRequest{Lines: []PickLine{
		{ItemID: uuid.New(), Quantity: 1},
	}}, testActor)
	require.Error(t, err)
	assert.Equal(t, apperr.CodeNotFound, apperr.CodeOf(err))
}

func TestOutbound_PickInsufficientAvailability(t *testing.T) {
	f := newFixture(t)
	product := f.seedProduct(t, "SKU-A")
	location := f.seedLocation(t, "A-01", 100)
	f.seedStock(t, product.ID, location.ID, 3)

	ob, err := f.outboundSvc.Create(&CreateOutboundRequest{
		PaymentType: "COD",
		Items: []CreateOutboundItemRequest{
			{ProductID: product.ID, LocationID: location.ID, OrderedQty: 5},
		},
	}, testActor)
	require.NoError(t, err)

	_, err = f.outboundSvc.Pick(ob.ID, &PickRequest{Lines: []PickLine{
		{ItemID: ob.Items[0].ID, Quantity: 5},
	}}, testActor)
	require.Error(t, err)
	assert.Equal(t, apperr.CodeInsufficientQuantity, apperr.CodeOf(err))
}

func TestOutbound_CancelReleasesReservations(t *testing.T) {
	f := newFixture(t)
	ob, product, location := f.seedOutbound(t, "COD", 8)
	ob = f.pickAll(t, ob)

	ob, err := f.outboundSvc.Cancel(ob.ID, testActor)
	require.NoError(t, err)
	assert.Equal(t, model.OutboundCancelled, ob.Status)

	inv := f.getInventory(t, product.ID, location.ID)
	assert.Equal(t, 16, inv.QtyOnHand)
	assert.Equal(t, 0, inv.QtyReserved)
	assert.Equal(t, 16, inv.QtyAvailable)
}

func TestOutbound_CancelAfterShipRejected(t *testing.T) {
	f := newFixture(t)
	ob, _, _ := f.seedOutbound(t, "COD", 5)
	ob = f.pickAll(t, ob)
	_, err := f.outboundSvc.Pack(ob.ID, testActor)
	require.NoError(t, err)
	_, err = f.outboundSvc.Ship(ob.ID, testActor)
	require.NoError(t, err)

	_, err = f.outboundSvc.Cancel(ob.ID, testActor)
	require.Error(t, err)
	assert.Equal(t, apperr.CodeInvalidTransition, apperr.CodeOf(err))
}

func TestOutbound_PrepaidShipGate(t *testing.T) {
	f := newFixture(t)
	ob, _, _ := f.seedOutbound(t, "PREPAID", 5)
	ob = f.pickAll(t, ob)
	_, err := f.outboundSvc.Pack(ob.ID, testActor)
	require.NoError(t, err)

	// No payment linked yet: blocked.
	_, err = f.outboundSvc.Ship(ob.ID, testActor)
	require.Error(t, err)
	assert.Equal(t, apperr.CodeInvalidTransition, apperr.CodeOf(err))

	payment, err := f.paymentSvc.Create(&CreatePaymentRequest{
		OutboundID: &ob.ID,
		Amount:     "150.00",
		Method:     "card",
	}, testActor)
	require.NoError(t, err)

	// Linked but still pending: blocked.
	_, err = f.outboundSvc.Ship(ob.ID, testActor)
	require.Error(t, err)
	assert.Equal(t, apperr.CodeInvalidTransition, apperr.CodeOf(err))

	_, err = f.paymentSvc.Confirm(payment.ID, testActor)
	require.NoError(t, err)

	shipped, err := f.outboundSvc.Ship(ob.ID, testActor)
	require.NoError(t, err)
	assert.Equal(t, model.OutboundShipped, shipped.Status)
}

func TestOutbound_CreateRejectsInactiveProduct(t *testing.T) {
	f := newFixture(t)
	product := f.seedProduct(t, "SKU-A")
	location := f.seedLocation(t, "A-01", 100)
	_, err := f.productSvc.SetActive(product.ID, false, testActor)
	require.NoError(t, err)

	_, err = f.outboundSvc.Create(&CreateOutboundRequest{
		PaymentType: "COD",
		Items: []CreateOutboundItemRequest{
			{ProductID: product.ID, LocationID: location.ID, OrderedQty: 1},
		},
	}, testActor)
	require.Error(t, err)
	assert.Equal(t, apperr.CodeValidation, apperr.CodeOf(err))
}

func TestOutbound_CreateRejectsBadPaymentType(t *testing.T) {
	f := newFixture(t)
	product := f.seedProduct(t, "SKU-A")
	location := f.seedLocation(t, "A-01", 100)

	_, err := f.outboundSvc.Create(&CreateOutboundRequest{
		PaymentType: "BARTER",
		Items: []CreateOutboundItemRequest{
			{ProductID: product.ID, LocationID: location.ID, OrderedQty: 1},
		},
	}, testActor)
	require.Error(t, err)
	assert.Equal(t, apperr.CodeValidation, apperr.CodeOf(err))
}
