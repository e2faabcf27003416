package payment_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/vqminh/tour-booking/internal"
	bookingdm "github.com/vqminh/tour-booking/internal/core/datamodel/booking"
	cartdm "github.com/vqminh/tour-booking/internal/core/datamodel/cart"
	sessiondm "github.com/vqminh/tour-booking/internal/core/datamodel/session"
	tourdm "github.com/vqminh/tour-booking/internal/core/datamodel/tour"
	voucherdm "github.com/vqminh/tour-booking/internal/core/datamodel/voucher"
	"github.com/vqminh/tour-booking/internal/payment"
	"github.com/vqminh/tour-booking/internal/provider"
	"github.com/vqminh/tour-booking/internal/seatledger"
)

func TestPayment(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Payment Suite")
}

type mockSessionStore struct {
	created   []*sessiondm.PaymentSession
	createErr error

	session *sessiondm.PaymentSession
	findErr error
}

func (m *mockSessionStore) Create(ctx context.Context, sess *sessiondm.PaymentSession) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.created = append(m.created, sess)
	return nil
}

func (m *mockSessionStore) FindByOrderID(ctx context.Context, orderID string) (*sessiondm.PaymentSession, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	if m.session == nil || m.session.OrderID != orderID {
		return nil, internal.ErrSessionNotFound
	}
	return m.session, nil
}

type mockCartReader struct {
	items []*cartdm.Item
	err   error
}

func (m *mockCartReader) SelectedItems(ctx context.Context, userID int64) ([]*cartdm.Item, error) {
	return m.items, m.err
}

type mockTourCatalog struct {
	tours map[int64]*tourdm.Tour
}

func (m *mockTourCatalog) GetTour(ctx context.Context, tourID int64) (*tourdm.Tour, error) {
	t, ok := m.tours[tourID]
	if !ok {
		return nil, internal.ErrTourNotFound
	}
	return t, nil
}

type mockVoucherRepo struct {
	voucher *voucherdm.Voucher
	err     error
}

func (m *mockVoucherRepo) GetByCode(ctx context.Context, code string) (*voucherdm.Voucher, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.voucher, nil
}

type mockBookingReader struct {
	booking *bookingdm.Booking
	err     error
}

func (m *mockBookingReader) GetByID(ctx context.Context, id int64) (*bookingdm.Booking, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.booking, nil
}

type mockCapacityChecker struct {
	err    error
	checks int
}

func (m *mockCapacityChecker) CheckCapacity(ctx context.Context, tourID int64, date string, adults, children, alreadyHeld int) (*seatledger.Availability, error) {
	m.checks++
	if m.err != nil {
		return nil, m.err
	}
	return &seatledger.Availability{TourID: tourID, DepartureDate: date, SeatsLeft: 10, SeatsTotal: 20}, nil
}

type mockReconciler struct {
	booking  *bookingdm.Booking
	err      error
	orderIDs []string
	outcomes []provider.Outcome
}

func (m *mockReconciler) Reconcile(ctx context.Context, orderID string, outcome provider.Outcome) (*bookingdm.Booking, error) {
	m.orderIDs = append(m.orderIDs, orderID)
	m.outcomes = append(m.outcomes, outcome)
	return m.booking, m.err
}

type mockIntentCreator struct {
	name    string
	result  *provider.IntentResult
	err     error
	intents []provider.Intent
}

func (m *mockIntentCreator) Name() string {
	return m.name
}

func (m *mockIntentCreator) CreateIntent(ctx context.Context, intent provider.Intent) (*provider.IntentResult, error) {
	m.intents = append(m.intents, intent)
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

type mockCapturer struct {
	outcome provider.Outcome
	err     error
	calls   int
}

func (m *mockCapturer) Capture(ctx context.Context, orderID string) (provider.Outcome, error) {
	m.calls++
	return m.outcome, m.err
}

var _ = Describe("PaymentService", func() {
	var (
		sessions   *mockSessionStore
		cart       *mockCartReader
		tours      *mockTourCatalog
		vouchers   *mockVoucherRepo
		bookings   *mockBookingReader
		capacity   *mockCapacityChecker
		reconciler *mockReconciler
		momoMock   *mockIntentCreator
		paypalMock *mockIntentCreator
		capturer   *mockCapturer
		service    *payment.Service
		ctx        context.Context
	)

	BeforeEach(func() {
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

		sessions = &mockSessionStore{}
		cart = &mockCartReader{}
		tours = &mockTourCatalog{tours: map[int64]*tourdm.Tour{
			10: {ID: 10, Name: "Ha Long Bay Cruise", UnitPriceAdult: 500000, UnitPriceChild: 250000, IsActive: true},
			11: {ID: 11, Name: "Sapa Trekking", UnitPriceAdult: 3200000, UnitPriceChild: 2000000, IsActive: true},
			12: {ID: 12, Name: "Retired Tour", UnitPriceAdult: 100000, UnitPriceChild: 50000, IsActive: false},
		}}
		vouchers = &mockVoucherRepo{}
		bookings = &mockBookingReader{}
		capacity = &mockCapacityChecker{}
		reconciler = &mockReconciler{}
		momoMock = &mockIntentCreator{
			name: "momo",
			result: &provider.IntentResult{
				PayURL: "https://test-payment.momo.vn/pay/abc",
				Raw:    json.RawMessage(`{"resultCode":0}`),
			},
		}
		paypalMock = &mockIntentCreator{
			name: "paypal",
			result: &provider.IntentResult{
				PayURL: "https://www.sandbox.paypal.com/checkoutnow?token=5O190127TN364715T",
				Raw:    json.RawMessage(`{"id":"5O190127TN364715T","status":"CREATED"}`),
			},
		}
		capturer = &mockCapturer{}

		service = payment.NewService(
			sessions, cart, tours, vouchers, bookings, capacity, reconciler,
			map[string]provider.IntentCreator{"momo": momoMock, "paypal": paypalMock},
			capturer, logger,
		)
		ctx = context.Background()
	})

	Describe("Checkout", func() {
		buyNow := func() *payment.CheckoutRequest {
			return &payment.CheckoutRequest{
				Provider: sessiondm.ProviderMoMo,
				Mode:     sessiondm.ModeBuyNow,
				Item: &payment.CheckoutItemRequest{
					TourID:        10,
					DepartureDate: "2026-09-15",
					Adults:        2,
					Children:      1,
				},
			}
		}

		It("should open a momo session priced from the live catalog", func() {
			resp, err := service.Checkout(ctx, 1, buyNow())
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Amount).To(Equal(int64(1250000)))
			Expect(resp.Currency).To(Equal("VND"))
			Expect(resp.PayURL).To(Equal("https://test-payment.momo.vn/pay/abc"))
			Expect(resp.Provider).To(Equal("momo"))

			Expect(momoMock.intents).To(HaveLen(1))
			Expect(momoMock.intents[0].AmountVND).To(Equal(int64(1250000)))

			Expect(sessions.created).To(HaveLen(1))
			sess := sessions.created[0]
			Expect(sess.OrderID).To(Equal(resp.OrderID))
			Expect(sess.Status).To(Equal(sessiondm.StatusPending))
			Expect(sess.UserID).To(Equal(int64(1)))
			Expect(sess.Items).To(HaveLen(1))
			Expect(sess.Items[0].UnitPriceAdult).To(Equal(int64(500000)))
			Expect(sess.Items[0].Subtotal()).To(Equal(int64(1250000)))
		})

		It("should key a paypal session by the provider order id", func() {
			req := buyNow()
			req.Provider = sessiondm.ProviderPayPal

			resp, err := service.Checkout(ctx, 1, req)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.OrderID).To(Equal("5O190127TN364715T"))
			Expect(sessions.created[0].OrderID).To(Equal("5O190127TN364715T"))
		})

		It("should reject an unsupported provider", func() {
			req := buyNow()
			req.Provider = "stripe"
			_, err := service.Checkout(ctx, 1, req)
			Expect(err).To(HaveOccurred())
			Expect(sessions.created).To(BeEmpty())
		})

		It("should reject an inactive tour", func() {
			req := buyNow()
			req.Item.TourID = 12
			_, err := service.Checkout(ctx, 1, req)
			Expect(internal.IsErrorCode(err, internal.ErrCodeTourNotFound)).To(BeTrue())
		})

		It("should stop before the provider when the capacity check fails", func() {
			capacity.err = internal.NewExceedsCapacityError(1, 20)
			_, err := service.Checkout(ctx, 1, buyNow())
			Expect(internal.IsErrorCode(err, internal.ErrCodeExceedsCapacity)).To(BeTrue())
			Expect(momoMock.intents).To(BeEmpty())
			Expect(sessions.created).To(BeEmpty())
		})

		It("should apply a voucher and record the discount on the session", func() {
			vouchers.voucher = &voucherdm.Voucher{Code: "WELCOME100K", DiscountAmount: 100000, IsActive: true}

			req := buyNow()
			req.VoucherCode = "WELCOME100K"
			resp, err := service.Checkout(ctx, 1, req)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Amount).To(Equal(int64(1150000)))
			Expect(resp.DiscountAmount).To(Equal(int64(100000)))
			Expect(sessions.created[0].DiscountAmount).To(Equal(int64(100000)))
			Expect(momoMock.intents[0].AmountVND).To(Equal(int64(1150000)))
		})

		It("should cap the discount at the order total", func() {
			vouchers.voucher = &voucherdm.Voucher{Code: "BIG", DiscountAmount: 2000000, IsActive: true}

			req := buyNow()
			req.VoucherCode = "BIG"
			resp, err := service.Checkout(ctx, 1, req)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Amount).To(Equal(int64(0)))
			Expect(resp.DiscountAmount).To(Equal(int64(1250000)))
		})

		It("should reject a voucher below its minimum order amount", func() {
			vouchers.voucher = &voucherdm.Voucher{Code: "SUMMER250K", DiscountAmount: 250000, MinOrderAmount: 3000000, IsActive: true}

			req := buyNow()
			req.VoucherCode = "SUMMER250K"
			_, err := service.Checkout(ctx, 1, req)
			Expect(err).To(HaveOccurred())
		})

		It("should reject an expired voucher", func() {
			expired := time.Now().Add(-time.Hour)
			vouchers.voucher = &voucherdm.Voucher{Code: "OLD", DiscountAmount: 100000, IsActive: true, ExpiresAt: &expired}

			req := buyNow()
			req.VoucherCode = "OLD"
			_, err := service.Checkout(ctx, 1, req)
			Expect(internal.IsErrorCode(err, internal.ErrCodeVoucherExpired)).To(BeTrue())
		})

		Context("cart mode", func() {
			It("should snapshot every selected cart line with live prices", func() {
				cart.items = []*cartdm.Item{
					{UserID: 1, TourID: 10, DepartureDate: "2026-09-15", Adults: 2, Children: 1},
					{UserID: 1, TourID: 11, DepartureDate: "2026-09-20", Adults: 1, Children: 0},
				}

				resp, err := service.Checkout(ctx, 1, &payment.CheckoutRequest{
					Provider: sessiondm.ProviderMoMo,
					Mode:     sessiondm.ModeCart,
				})
				Expect(err).NotTo(HaveOccurred())
				// 1250000 + 3200000
				Expect(resp.Amount).To(Equal(int64(4450000)))
				Expect(sessions.created[0].Items).To(HaveLen(2))
				Expect(capacity.checks).To(Equal(2))
			})

			It("should reject an empty cart", func() {
				_, err := service.Checkout(ctx, 1, &payment.CheckoutRequest{
					Provider: sessiondm.ProviderMoMo,
					Mode:     sessiondm.ModeCart,
				})
				Expect(err).To(HaveOccurred())
			})
		})

		Context("retry-payment mode", func() {
			retryRequest := func() *payment.CheckoutRequest {
				return &payment.CheckoutRequest{
					Provider:  sessiondm.ProviderMoMo,
					Mode:      sessiondm.ModeRetryPayment,
					BookingID: 7,
				}
			}

			BeforeEach(func() {
				bookings.booking = &bookingdm.Booking{
					ID:            7,
					UserID:        1,
					Status:        bookingdm.StatusPending,
					PaymentStatus: bookingdm.PaymentStatusFailed,
					Items: sessiondm.LineItems{{
						TourID:         10,
						DepartureDate:  "2026-09-15",
						Adults:         2,
						Children:       1,
						UnitPriceAdult: 400000,
						UnitPriceChild: 200000,
					}},
				}
			})

			It("should reprice the booking quantities and pin the retry target", func() {
				resp, err := service.Checkout(ctx, 1, retryRequest())
				Expect(err).NotTo(HaveOccurred())
				// live catalog prices, not the stale 400000/200000 snapshot
				Expect(resp.Amount).To(Equal(int64(1250000)))

				sess := sessions.created[0]
				Expect(sess.RetryBookingID).NotTo(BeNil())
				Expect(*sess.RetryBookingID).To(Equal(int64(7)))
			})

			It("should hide another user's booking behind not found", func() {
				bookings.booking.UserID = 2
				_, err := service.Checkout(ctx, 1, retryRequest())
				Expect(internal.IsErrorCode(err, internal.ErrCodeBookingNotFound)).To(BeTrue())
			})

			It("should refuse to retry an already paid booking", func() {
				bookings.booking.PaymentStatus = bookingdm.PaymentStatusCompleted
				_, err := service.Checkout(ctx, 1, retryRequest())
				Expect(internal.IsErrorCode(err, internal.ErrCodeBookingNotPending)).To(BeTrue())
			})
		})
	})

	Describe("GetSession", func() {
		It("should return a session the caller owns", func() {
			sessions.session = &sessiondm.PaymentSession{OrderID: "order-1", UserID: 1, Status: sessiondm.StatusPending}
			sess, err := service.GetSession(ctx, 1, "order-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(sess.OrderID).To(Equal("order-1"))
		})

		It("should hide another user's session behind not found", func() {
			sessions.session = &sessiondm.PaymentSession{OrderID: "order-1", UserID: 2}
			_, err := service.GetSession(ctx, 1, "order-1")
			Expect(internal.IsErrorCode(err, internal.ErrCodeSessionNotFound)).To(BeTrue())
		})
	})

	Describe("CapturePayPal", func() {
		BeforeEach(func() {
			sessions.session = &sessiondm.PaymentSession{
				OrderID:  "5O190127TN364715T",
				UserID:   1,
				Provider: sessiondm.ProviderPayPal,
				Status:   sessiondm.StatusPending,
				Amount:   1250000,
			}
			reconciler.booking = &bookingdm.Booking{ID: 3, UserID: 1, Status: bookingdm.StatusPaid}
		})

		It("should capture a pending session and settle the outcome", func() {
			capturer.outcome = provider.Outcome{Status: provider.OutcomePaid, TransactionRef: "3C679366HH908993F", ResultCode: "COMPLETED"}

			b, err := service.CapturePayPal(ctx, 1, "5O190127TN364715T")
			Expect(err).NotTo(HaveOccurred())
			Expect(b.ID).To(Equal(int64(3)))
			Expect(capturer.calls).To(Equal(1))
			Expect(reconciler.orderIDs).To(Equal([]string{"5O190127TN364715T"}))
			Expect(reconciler.outcomes[0].Paid()).To(BeTrue())
		})

		It("should replay the stored outcome on a terminal session without calling the provider", func() {
			ref := "3C679366HH908993F"
			code := "COMPLETED"
			sessions.session.Status = sessiondm.StatusPaid
			sessions.session.TransactionRef = &ref
			sessions.session.ResultCode = &code

			b, err := service.CapturePayPal(ctx, 1, "5O190127TN364715T")
			Expect(err).NotTo(HaveOccurred())
			Expect(b.ID).To(Equal(int64(3)))
			Expect(capturer.calls).To(Equal(0))
			Expect(reconciler.outcomes).To(HaveLen(1))
			Expect(reconciler.outcomes[0].Paid()).To(BeTrue())
			Expect(reconciler.outcomes[0].TransactionRef).To(Equal(ref))
		})

		It("should hide another user's session behind not found", func() {
			sessions.session.UserID = 2
			_, err := service.CapturePayPal(ctx, 1, "5O190127TN364715T")
			Expect(internal.IsErrorCode(err, internal.ErrCodeSessionNotFound)).To(BeTrue())
		})

		It("should refuse to capture a non-paypal session", func() {
			sessions.session.Provider = sessiondm.ProviderMoMo
			_, err := service.CapturePayPal(ctx, 1, "5O190127TN364715T")
			Expect(internal.IsErrorCode(err, internal.ErrCodeInvalidProvider)).To(BeTrue())
			Expect(capturer.calls).To(Equal(0))
		})

		It("should not settle anything when the capture call fails", func() {
			capturer.err = internal.NewExternalError("paypal capture call failed", nil)
			_, err := service.CapturePayPal(ctx, 1, "5O190127TN364715T")
			Expect(err).To(HaveOccurred())
			Expect(reconciler.orderIDs).To(BeEmpty())
		})
	})
})
