package midtrans

import (
	"context"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"

	"meal-ordering-be/internal/dto"
	"meal-ordering-be/internal/pkg/apperror"
	"meal-ordering-be/pkg/payment"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"
	"github.com/midtrans/midtrans-go/snap"
)

type Config struct {
	ServerKey    string
	IsProduction bool
	FinishURL    string
}

// Gateway talks to Midtrans Snap for checkout and the Core API for refunds.
type Gateway struct {
	cfg  Config
	snap snap.Client
	core coreapi.Client
}

func NewGateway(cfg Config) *Gateway {
	env := midtrans.Sandbox
	if cfg.IsProduction {
		env = midtrans.Production
	}

	g := &Gateway{cfg: cfg}
	g.snap.New(cfg.ServerKey, env)
	g.core.New(cfg.ServerKey, env)
	return g
}

func (g *Gateway) CreateCheckout(ctx context.Context, req payment.CheckoutRequest) (*payment.CheckoutSession, error) {
	grossAmount := toGrossAmount(req.Amount)

	snapReq := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  req.OrderId,
			GrossAmt: grossAmount,
		},
		CreditCard: &snap.CreditCardDetails{
			Secure: true,
		},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: req.Customer.Name,
			Email: req.Customer.Email,
		},
		Items: &[]midtrans.ItemDetails{
			{
				ID:    req.ItemId,
				Price: grossAmount,
				Qty:   1,
				Name:  truncate(req.Description, 50),
			},
		},
		EnabledPayments: snap.AllSnapPaymentType,
	}
	if g.cfg.FinishURL != "" {
		snapReq.Callbacks = &snap.Callbacks{Finish: g.cfg.FinishURL}
	}

	resp, midErr := g.snap.CreateTransaction(snapReq)
	if midErr != nil {
		return nil, apperror.Wrap(apperror.ErrProcessor, midErr)
	}

	return &payment.CheckoutSession{
		Reference:   req.OrderId,
		Token:       resp.Token,
		RedirectURL: resp.RedirectURL,
	}, nil
}

func (g *Gateway) Refund(ctx context.Context, req payment.RefundRequest) (*payment.RefundResult, error) {
	resp, midErr := g.core.RefundTransaction(req.Reference, &coreapi.RefundReq{
		RefundKey: req.IdempotencyKey,
		Amount:    toGrossAmount(req.Amount),
		Reason:    req.Reason,
	})
	if midErr != nil {
		return nil, apperror.Wrap(apperror.ErrRefundFailed, midErr)
	}
	if resp.StatusCode != "200" && resp.StatusCode != "201" {
		return nil, apperror.WithMessage(apperror.ErrRefundFailed, "refund processing failed: "+resp.StatusMessage)
	}

	refundRef := resp.RefundKey
	if refundRef == "" {
		refundRef = req.IdempotencyKey
	}
	return &payment.RefundResult{RefundRef: refundRef}, nil
}

func (g *Gateway) ParseNotification(payload []byte) (*payment.Notification, error) {
	var body dto.MidtransWebhookRequest
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil, apperror.Wrap(apperror.ErrInvalidPayload, err)
	}
	if body.OrderId == "" || body.TransactionStatus == "" {
		return nil, apperror.ErrInvalidPayload
	}
	if !g.validSignature(body) {
		return nil, apperror.ErrInvalidSignature
	}

	eventId := body.TransactionId
	if eventId == "" {
		eventId = body.OrderId
	}

	return &payment.Notification{
		ID:              eventId + ":" + body.TransactionStatus,
		Type:            classify(body),
		Reference:       body.OrderId,
		SubscriptionRef: body.SubscriptionId,
		RawStatus:       body.TransactionStatus,
		Payload:         payload,
	}, nil
}

// Signature returns SHA512(order_id + status_code + gross_amount + server_key) in hex.
func Signature(orderId, statusCode, grossAmount, serverKey string) string {
	sum := sha512.Sum512([]byte(orderId + statusCode + grossAmount + serverKey))
	return hex.EncodeToString(sum[:])
}

func (g *Gateway) validSignature(body dto.MidtransWebhookRequest) bool {
	expected := Signature(body.OrderId, body.StatusCode, body.GrossAmount, g.cfg.ServerKey)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(body.SignatureKey)) == 1
}

func classify(body dto.MidtransWebhookRequest) payment.EventType {
	status := body.TransactionStatus
	if body.SubscriptionId != "" {
		switch status {
		case "cancel", "expire", "deny":
			return payment.EventSubscriptionCancelled
		}
	}

	switch status {
	case "capture":
		if body.FraudStatus == "challenge" {
			return payment.EventCheckoutPending
		}
		return payment.EventCheckoutCompleted
	case "settlement":
		return payment.EventCheckoutCompleted
	case "deny", "cancel", "expire", "failure":
		return payment.EventCheckoutFailed
	case "pending":
		return payment.EventCheckoutPending
	default:
		return payment.EventUnknown
	}
}
