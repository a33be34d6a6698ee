package orderControllers

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	cartControllers "github.com/sweetdreams-bakery/storefront/controllers/cart"
	"github.com/sweetdreams-bakery/storefront/database/dbtest"
	"github.com/sweetdreams-bakery/storefront/models"
	"gorm.io/gorm"
)

type recordingNotifier struct {
	mu     sync.Mutex
	events []string
}

func (n *recordingNotifier) Publish(event string, order models.Order) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

func product(t *testing.T, db *gorm.DB, nameEN string) models.Product {
	t.Helper()
	var p models.Product
	require.NoError(t, db.Where("name_en = ?", nameEN).First(&p).Error)
	return p
}

func stockOf(t *testing.T, db *gorm.DB, id uint) int {
	t.Helper()
	n, err := models.CurrentStock(db, id)
	require.NoError(t, err)
	return n
}

func countRows(t *testing.T, db *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}

func lineFor(p models.Product, qty int) models.CartLine {
	return models.CartLine{ProductID: p.ID, ProductName: p.Name, Quantity: qty, UnitPrice: p.Price}
}

func uintPtr(v uint) *uint { return &v }

func placeInput(userID *uint, lines ...models.CartLine) PlaceOrderInput {
	return PlaceOrderInput{
		UserID:          userID,
		Lines:           lines,
		CustomerName:    "Somchai",
		CustomerPhone:   "0812345678",
		ShippingAddress: "Somchai, 99 Sukhumvit Rd, Bangkok",
	}
}

func TestPlaceOrderCroissantExample(t *testing.T) {
	db := dbtest.Seeded(t)
	ctx := context.Background()
	notifier := &recordingNotifier{}
	engine := NewEngine(db, notifier)
	croissant := product(t, db, "Croissant")
	before := stockOf(t, db, croissant.ID)

	cart := cartControllers.NewSession(db, "user_1")
	_, err := cart.Add(ctx, croissant.ID, 2, "")
	require.NoError(t, err)
	lines, err := cart.Snapshot(ctx)
	require.NoError(t, err)

	orderID, err := engine.PlaceOrder(ctx, placeInput(dbtest.User(t, db, 1), lines...), cart)
	require.NoError(t, err)

	var order models.Order
	require.NoError(t, db.Preload("Items").Preload("StatusLogs").First(&order, orderID).Error)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, "90.00", order.TotalAmount.StringFixed(2))
	require.Len(t, order.Items, 1)
	assert.Equal(t, "90.00", order.Items[0].TotalPrice.StringFixed(2))
	assert.Equal(t, "45.00", order.Items[0].UnitPrice.StringFixed(2))
	assert.NotEmpty(t, order.OrderRef)
	require.Len(t, order.StatusLogs, 1)
	assert.Equal(t, models.OrderStatusPending, order.StatusLogs[0].Status)

	assert.Equal(t, before-2, stockOf(t, db, croissant.ID))

	left, err := cart.Snapshot(ctx)
	require.NoError(t, err)
	assert.Empty(t, left)
	assert.Equal(t, []string{EventOrderCreated}, notifier.events)
}

func TestPlaceOrderTotalMatchesItemsAndUsesSnapshotPrice(t *testing.T) {
	db := dbtest.Seeded(t)
	ctx := context.Background()
	engine := NewEngine(db, nil)
	cake := product(t, db, "Chocolate Cake")
	latte := product(t, db, "Iced Latte")
	cakeBefore, latteBefore := stockOf(t, db, cake.ID), stockOf(t, db, latte.ID)

	snapshotLatte := lineFor(latte, 3)
	snapshotLatte.UnitPrice = decimal.RequireFromString("59.50")
	snapshotLatte.Options = "less_sugar"

	orderID, err := engine.PlaceOrder(ctx, placeInput(nil, lineFor(cake, 1), snapshotLatte), nil)
	require.NoError(t, err)

	var order models.Order
	require.NoError(t, db.Preload("Items").First(&order, orderID).Error)
	assert.Nil(t, order.UserID)

	sum := decimal.Zero
	for _, item := range order.Items {
		assert.True(t, item.TotalPrice.Equal(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))))
		sum = sum.Add(item.TotalPrice)
	}
	assert.True(t, order.TotalAmount.Equal(sum))
	assert.Equal(t, "298.50", order.TotalAmount.StringFixed(2))
	assert.Equal(t, "less_sugar", order.Items[1].Options)

	assert.Equal(t, cakeBefore-1, stockOf(t, db, cake.ID))
	assert.Equal(t, latteBefore-3, stockOf(t, db, latte.ID))
}

func TestPlaceOrderInsufficientStockRollsBackEverything(t *testing.T) {
	db := dbtest.Seeded(t)
	ctx := context.Background()
	engine := NewEngine(db, nil)
	baguette := product(t, db, "Baguette")
	croissant := product(t, db, "Croissant")
	require.NoError(t, db.Model(&croissant).Update("stock_quantity", 3).Error)
	baguetteBefore := stockOf(t, db, baguette.ID)

	cart := cartControllers.NewSession(db, "user_1")
	_, err := cart.Add(ctx, baguette.ID, 1, "")
	require.NoError(t, err)

	_, err = engine.PlaceOrder(ctx, placeInput(dbtest.User(t, db, 1), lineFor(baguette, 2), lineFor(croissant, 5)), cart)

	var stockErr *models.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, croissant.ID, stockErr.ProductID)
	assert.Equal(t, 5, stockErr.Requested)
	assert.Equal(t, 3, stockErr.Available)

	assert.Equal(t, 3, stockOf(t, db, croissant.ID))
	assert.Equal(t, baguetteBefore, stockOf(t, db, baguette.ID))
	assert.Zero(t, countRows(t, db, &models.Order{}))
	assert.Zero(t, countRows(t, db, &models.OrderItem{}))
	assert.Zero(t, countRows(t, db, &models.OrderStatusLog{}))

	left, err := cart.Snapshot(ctx)
	require.NoError(t, err)
	assert.Len(t, left, 1)
}

func TestPlaceOrderValidation(t *testing.T) {
	db := dbtest.Seeded(t)
	engine := NewEngine(db, nil)
	croissant := product(t, db, "Croissant")

	zeroQty := placeInput(nil, lineFor(croissant, 0))
	noName := placeInput(nil, lineFor(croissant, 1))
	noName.CustomerName = "  "
	noPhone := placeInput(nil, lineFor(croissant, 1))
	noPhone.CustomerPhone = ""

	tests := []struct {
		name  string
		in    PlaceOrderInput
		field string
	}{
		{"empty cart", placeInput(nil), "cart"},
		{"zero quantity", zeroQty, "quantity"},
		{"missing name", noName, "customer_name"},
		{"missing phone", noPhone, "customer_phone"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := engine.PlaceOrder(context.Background(), tt.in, nil)
			var validation *models.ValidationError
			require.ErrorAs(t, err, &validation)
			assert.Equal(t, tt.field, validation.Field)
		})
	}
	assert.Zero(t, countRows(t, db, &models.Order{}))
	assert.Equal(t, 18, stockOf(t, db, croissant.ID))
}

func TestPlaceOrderUnknownProduct(t *testing.T) {
	db := dbtest.Seeded(t)
	engine := NewEngine(db, nil)

	_, err := engine.PlaceOrder(context.Background(), placeInput(nil, models.CartLine{
		ProductID: 4242,
		Quantity:  1,
		UnitPrice: decimal.NewFromInt(10),
	}), nil)

	var notFound *models.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Zero(t, countRows(t, db, &models.Order{}))
}

func TestPlaceOrderForDeletedUser(t *testing.T) {
	db := dbtest.Seeded(t)
	engine := NewEngine(db, nil)
	brownie := product(t, db, "Brownie")

	_, err := engine.PlaceOrder(context.Background(), placeInput(uintPtr(42), lineFor(brownie, 1)), nil)

	var notFound *models.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "user", notFound.Resource)
	assert.Equal(t, 12, stockOf(t, db, brownie.ID))
	assert.Zero(t, countRows(t, db, &models.Order{}))
}

func TestPlaceOrderKeepsLinesAddedAfterSnapshot(t *testing.T) {
	db := dbtest.Seeded(t)
	ctx := context.Background()
	engine := NewEngine(db, nil)
	croissant := product(t, db, "Croissant")
	macaron := product(t, db, "Macaron")

	cart := cartControllers.NewSession(db, "user_5")
	_, err := cart.Add(ctx, croissant.ID, 2, "")
	require.NoError(t, err)
	lines, err := cart.Snapshot(ctx)
	require.NoError(t, err)

	// Another tab adds to the cart while checkout is in flight.
	_, err = cart.Add(ctx, macaron.ID, 4, "")
	require.NoError(t, err)
	_, err = cart.Add(ctx, croissant.ID, 1, "")
	require.NoError(t, err)

	_, err = engine.PlaceOrder(ctx, placeInput(dbtest.User(t, db, 5), lines...), cart)
	require.NoError(t, err)

	left, err := cart.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, left, 2)
	remaining := map[uint]int{}
	for _, l := range left {
		remaining[l.ProductID] = l.Quantity
	}
	assert.Equal(t, map[uint]int{croissant.ID: 1, macaron.ID: 4}, remaining)
	assert.Equal(t, 16, stockOf(t, db, croissant.ID))
	assert.Equal(t, 30, stockOf(t, db, macaron.ID))
}

func TestConcurrentCheckoutOnLastUnit(t *testing.T) {
	db := dbtest.Seeded(t)
	engine := NewEngine(db, nil)
	redVelvet := product(t, db, "Red Velvet Cake")
	require.NoError(t, db.Model(&redVelvet).Update("stock_quantity", 1).Error)

	const buyers = 2
	var (
		wg    sync.WaitGroup
		start = make(chan struct{})
		errs  = make([]error, buyers)
	)
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, errs[i] = engine.PlaceOrder(context.Background(), placeInput(nil, lineFor(redVelvet, 1)), nil)
		}(i)
	}
	close(start)
	wg.Wait()

	succeeded, outOfStock := 0, 0
	for _, err := range errs {
		var stockErr *models.InsufficientStockError
		switch {
		case err == nil:
			succeeded++
		case assert.ErrorAs(t, err, &stockErr):
			outOfStock++
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, outOfStock)
	assert.Equal(t, 0, stockOf(t, db, redVelvet.ID))
	assert.EqualValues(t, 1, countRows(t, db, &models.Order{}))
}

func TestCancelOrderRestoresStock(t *testing.T) {
	db := dbtest.Seeded(t)
	ctx := context.Background()
	notifier := &recordingNotifier{}
	engine := NewEngine(db, notifier)
	croissant := product(t, db, "Croissant")
	brownie := product(t, db, "Brownie")
	croissantBefore, brownieBefore := stockOf(t, db, croissant.ID), stockOf(t, db, brownie.ID)
	owner := dbtest.User(t, db, 3)

	orderID, err := engine.PlaceOrder(ctx, placeInput(owner, lineFor(croissant, 4), lineFor(brownie, 2)), nil)
	require.NoError(t, err)

	require.NoError(t, engine.CancelOrder(ctx, orderID, Actor{UserID: owner}))

	assert.Equal(t, croissantBefore, stockOf(t, db, croissant.ID))
	assert.Equal(t, brownieBefore, stockOf(t, db, brownie.ID))

	var order models.Order
	require.NoError(t, db.Preload("StatusLogs").First(&order, orderID).Error)
	assert.Equal(t, models.OrderStatusCancelled, order.Status)
	require.Len(t, order.StatusLogs, 2)
	assert.Equal(t, models.OrderStatusCancelled, order.StatusLogs[1].Status)
	assert.Equal(t, []string{EventOrderCreated, EventOrderStatusChanged}, notifier.events)
}

func TestCancelOrderTwiceDoesNotDoubleRestore(t *testing.T) {
	db := dbtest.Seeded(t)
	ctx := context.Background()
	engine := NewEngine(db, nil)
	macaron := product(t, db, "Macaron")
	before := stockOf(t, db, macaron.ID)
	owner := Actor{UserID: dbtest.User(t, db, 5)}

	orderID, err := engine.PlaceOrder(ctx, placeInput(owner.UserID, lineFor(macaron, 6)), nil)
	require.NoError(t, err)
	require.NoError(t, engine.CancelOrder(ctx, orderID, owner))

	err = engine.CancelOrder(ctx, orderID, owner)
	var notCancellable *models.NotCancellableError
	require.ErrorAs(t, err, &notCancellable)
	assert.Equal(t, orderID, notCancellable.OrderID)

	assert.Equal(t, before, stockOf(t, db, macaron.ID))
	assert.EqualValues(t, 2, countRows(t, db, &models.OrderStatusLog{}))
}

func TestCancelOrderRules(t *testing.T) {
	db := dbtest.Seeded(t)
	ctx := context.Background()
	engine := NewEngine(db, nil)
	baguette := product(t, db, "Baguette")
	owner := Actor{UserID: dbtest.User(t, db, 1)}
	stranger := Actor{UserID: uintPtr(2)}
	admin := Actor{UserID: uintPtr(99), Admin: true}

	var notCancellable *models.NotCancellableError

	err := engine.CancelOrder(ctx, 777, admin)
	require.ErrorAs(t, err, &notCancellable)
	assert.Equal(t, "order not found", notCancellable.Reason)

	orderID, err := engine.PlaceOrder(ctx, placeInput(owner.UserID, lineFor(baguette, 1)), nil)
	require.NoError(t, err)

	require.ErrorAs(t, engine.CancelOrder(ctx, orderID, stranger), &notCancellable)
	require.ErrorAs(t, engine.CancelOrder(ctx, orderID, Actor{}), &notCancellable)

	guestOrder, err := engine.PlaceOrder(ctx, placeInput(nil, lineFor(baguette, 1)), nil)
	require.NoError(t, err)
	require.ErrorAs(t, engine.CancelOrder(ctx, guestOrder, Actor{}), &notCancellable)
	require.NoError(t, engine.CancelOrder(ctx, guestOrder, admin))

	_, err = engine.TransitionStatus(ctx, orderID, "processing", admin)
	require.NoError(t, err)
	require.ErrorAs(t, engine.CancelOrder(ctx, orderID, owner), &notCancellable)
	assert.Equal(t, "order is processing", notCancellable.Reason)
}

func TestReorderSkipsUnavailableProducts(t *testing.T) {
	db := dbtest.Seeded(t)
	ctx := context.Background()
	engine := NewEngine(db, nil)
	cake := product(t, db, "Orange Cake")
	tea := product(t, db, "Iced Green Tea")
	owner := Actor{UserID: dbtest.User(t, db, 4)}

	orderID, err := engine.PlaceOrder(ctx, placeInput(owner.UserID, lineFor(cake, 1), lineFor(tea, 2)), nil)
	require.NoError(t, err)
	require.NoError(t, db.Model(&tea).Update("is_available", false).Error)

	cart := cartControllers.NewSession(db, "user_4")
	staged, err := engine.Reorder(ctx, orderID, owner, cart)
	require.NoError(t, err)
	assert.Equal(t, 1, staged)

	lines, err := cart.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, cake.ID, lines[0].ProductID)
}

func TestReorderOverwritesQuantityAtCurrentPrice(t *testing.T) {
	db := dbtest.Seeded(t)
	ctx := context.Background()
	engine := NewEngine(db, nil)
	croissant := product(t, db, "Croissant")
	owner := Actor{UserID: dbtest.User(t, db, 4)}

	line := lineFor(croissant, 3)
	line.Options = "warm"
	orderID, err := engine.PlaceOrder(ctx, placeInput(owner.UserID, line), nil)
	require.NoError(t, err)

	require.NoError(t, db.Model(&croissant).Update("price", decimal.RequireFromString("50.00")).Error)
	cart := cartControllers.NewSession(db, "user_4")
	_, err = cart.Add(ctx, croissant.ID, 7, "warm")
	require.NoError(t, err)

	staged, err := engine.Reorder(ctx, orderID, owner, cart)
	require.NoError(t, err)
	assert.Equal(t, 1, staged)

	lines, err := cart.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 3, lines[0].Quantity)
	assert.Equal(t, "warm", lines[0].Options)
	assert.Equal(t, "50.00", lines[0].UnitPrice.StringFixed(2))

	staged, err = engine.Reorder(ctx, orderID, owner, cart)
	require.NoError(t, err)
	assert.Equal(t, 1, staged)
	lines, err = cart.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, lines[0].Quantity)
}

func TestReorderOwnership(t *testing.T) {
	db := dbtest.Seeded(t)
	ctx := context.Background()
	engine := NewEngine(db, nil)
	brownie := product(t, db, "Brownie")
	owner := Actor{UserID: dbtest.User(t, db, 4)}

	orderID, err := engine.PlaceOrder(ctx, placeInput(owner.UserID, lineFor(brownie, 1)), nil)
	require.NoError(t, err)

	_, err = engine.Reorder(ctx, orderID, Actor{UserID: uintPtr(8)}, cartControllers.NewSession(db, "user_8"))
	var permission *models.PermissionError
	assert.ErrorAs(t, err, &permission)

	_, err = engine.Reorder(ctx, 31337, owner, cartControllers.NewSession(db, "user_4"))
	var notFound *models.NotFoundError
	assert.ErrorAs(t, err, &notFound)

	staged, err := engine.Reorder(ctx, orderID, Actor{UserID: uintPtr(1), Admin: true}, cartControllers.NewSession(db, "user_1"))
	require.NoError(t, err)
	assert.Equal(t, 1, staged)

	require.NoError(t, db.Model(&brownie).Update("is_available", false).Error)
	staged, err = engine.Reorder(ctx, orderID, owner, cartControllers.NewSession(db, "user_4"))
	require.NoError(t, err)
	assert.Zero(t, staged)
}

func TestTransitionStatusWorkflow(t *testing.T) {
	db := dbtest.Seeded(t)
	ctx := context.Background()
	engine := NewEngine(db, nil)
	cake := product(t, db, "Chocolate Cake")
	admin := Actor{UserID: uintPtr(1), Admin: true}

	orderID, err := engine.PlaceOrder(ctx, placeInput(dbtest.User(t, db, 2), lineFor(cake, 2)), nil)
	require.NoError(t, err)

	_, err = engine.TransitionStatus(ctx, orderID, "processing", Actor{UserID: uintPtr(2)})
	var permission *models.PermissionError
	require.ErrorAs(t, err, &permission)

	_, err = engine.TransitionStatus(ctx, orderID, "shipped", admin)
	var validation *models.ValidationError
	require.ErrorAs(t, err, &validation)

	_, err = engine.TransitionStatus(ctx, orderID, "completed", admin)
	var transition *models.InvalidTransitionError
	require.ErrorAs(t, err, &transition)
	assert.Equal(t, models.OrderStatusPending, transition.From)

	order, err := engine.TransitionStatus(ctx, orderID, "processing", admin)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusProcessing, order.Status)

	order, err = engine.TransitionStatus(ctx, orderID, "COMPLETED", admin)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCompleted, order.Status)

	_, err = engine.TransitionStatus(ctx, orderID, "cancelled", admin)
	require.ErrorAs(t, err, &transition)

	_, err = engine.TransitionStatus(ctx, 9999, "processing", admin)
	var notFound *models.NotFoundError
	require.ErrorAs(t, err, &notFound)

	var logs []models.OrderStatusLog
	require.NoError(t, db.Where("order_id = ?", orderID).Order("id").Find(&logs).Error)
	require.Len(t, logs, 3)
	assert.Equal(t, models.OrderStatusProcessing, logs[1].Status)
	assert.Equal(t, admin.UserID, logs[1].ChangedBy)
}

func TestAdminCancelFromProcessingRestoresStock(t *testing.T) {
	db := dbtest.Seeded(t)
	ctx := context.Background()
	engine := NewEngine(db, nil)
	latte := product(t, db, "Iced Latte")
	before := stockOf(t, db, latte.ID)
	admin := Actor{Admin: true}

	orderID, err := engine.PlaceOrder(ctx, placeInput(nil, lineFor(latte, 5)), nil)
	require.NoError(t, err)
	_, err = engine.TransitionStatus(ctx, orderID, "processing", admin)
	require.NoError(t, err)
	assert.Equal(t, before-5, stockOf(t, db, latte.ID))

	order, err := engine.TransitionStatus(ctx, orderID, "cancelled", admin)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, order.Status)
	assert.Equal(t, before, stockOf(t, db, latte.ID))

	_, err = engine.TransitionStatus(ctx, orderID, "cancelled", admin)
	var transition *models.InvalidTransitionError
	require.ErrorAs(t, err, &transition)
	assert.Equal(t, before, stockOf(t, db, latte.ID))
}

func TestDeleteOrderOnlyWhenTerminal(t *testing.T) {
	db := dbtest.Seeded(t)
	ctx := context.Background()
	engine := NewEngine(db, nil)
	baguette := product(t, db, "Baguette")
	admin := Actor{Admin: true}

	orderID, err := engine.PlaceOrder(ctx, placeInput(nil, lineFor(baguette, 1)), nil)
	require.NoError(t, err)

	var permission *models.PermissionError
	require.ErrorAs(t, engine.DeleteOrder(ctx, orderID, Actor{UserID: uintPtr(1)}), &permission)

	var validation *models.ValidationError
	require.ErrorAs(t, engine.DeleteOrder(ctx, orderID, admin), &validation)

	require.NoError(t, engine.CancelOrder(ctx, orderID, admin))
	require.NoError(t, engine.DeleteOrder(ctx, orderID, admin))

	assert.Zero(t, countRows(t, db, &models.Order{}))
	assert.Zero(t, countRows(t, db, &models.OrderItem{}))
	assert.Zero(t, countRows(t, db, &models.OrderStatusLog{}))

	var notFound *models.NotFoundError
	require.ErrorAs(t, engine.DeleteOrder(ctx, orderID, admin), &notFound)
}
