package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"
	stripecustomer "github.com/stripe/stripe-go/v84/customer"
	"github.com/stripe/stripe-go/v84/invoice"

	"github.com/civitech/hireengine-backend/account"
	"github.com/civitech/hireengine-backend/internal/middleware"
)

type accountResponse struct {
	ID             uuid.UUID              `json:"id"`
	MembershipType account.MembershipType `json:"membershipType"`
	Balance        float64                `json:"balance"`
	Charges        float64                `json:"charges"`
	CurrentHireID  *uuid.UUID             `json:"currentHireId,omitempty"`
}

func toAccountResponse(a *account.Account) accountResponse {
	return accountResponse{
		ID:             a.ID,
		MembershipType: a.MembershipType,
		Balance:        a.Balance,
		Charges:        a.Charges,
		CurrentHireID:  a.CurrentHireID,
	}
}

func (a *API) accountHandler(c *gin.Context) {
	acct, ok := a.getAccount(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, toAccountResponse(acct))
}

type addFundsRequest struct {
	Amount float64 `json:"amount" binding:"required,gt=0"`
}

func (a *API) addFundsHandler(c *gin.Context) {
	logger := middleware.GetLogger(c)

	var req addFundsRequest
	if err := c.Bind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	acct, ok := a.getAccount(c)
	if !ok {
		return
	}

	acct, err := a.mgr.AddFunds(c, acct.ID, req.Amount)
	if err != nil {
		logger.ErrorContext(c, "failed to add funds", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	// Large top-ups get a Stripe invoice for the customer's records. Billing
	// failures don't fail the top-up; Stripe retries on its own schedule.
	if req.Amount >= a.invoiceThreshold {
		stripeID, err := a.ensureStripeCustomer(c, acct)
		if err != nil {
			logger.ErrorContext(c, "failed to create stripe customer", "error", err)
		} else {
			go invoiceTopUp(logger, stripeID, req.Amount)
		}
	}

	c.JSON(http.StatusOK, toAccountResponse(acct))
}

// ensureStripeCustomer returns the account's Stripe customer ID, creating
// the customer on first use.
func (a *API) ensureStripeCustomer(c *gin.Context, acct *account.Account) (string, error) {
	if acct.StripeID.Valid {
		return acct.StripeID.String, nil
	}

	cust, err := stripecustomer.New(&stripe.CustomerParams{
		Metadata: map[string]string{
			"auth0_id": acct.Auth0ID,
			"id":       acct.ID.String(),
		},
	})
	if err != nil {
		return "", err
	}

	if err := a.ar.AddStripeID(c, acct.Auth0ID, cust.ID); err != nil {
		return "", err
	}
	acct.StripeID.String, acct.StripeID.Valid = cust.ID, true
	return cust.ID, nil
}

func invoiceTopUp(logger *slog.Logger, stripeID string, amount float64) {
	inParams := &stripe.InvoiceParams{
		Customer: stripe.String(stripeID),
	}
	in, err := invoice.New(inParams)
	if err != nil {
		logger.Error("Failed to create invoice", "error", err)
		return
	}

	ilParams := &stripe.InvoiceAddLinesParams{
		Lines: []*stripe.InvoiceAddLinesLineParams{
			{
				Amount:      stripe.Int64(int64(amount * 100)),
				Description: stripe.String(fmt.Sprintf("Account top-up - %.2f", amount)),
			},
		},
	}
	if _, err = invoice.AddLines(in.ID, ilParams); err != nil {
		logger.Error("Failed to add lines to invoice", "error", err)
		return
	}

	if _, err = invoice.FinalizeInvoice(in.ID, &stripe.InvoiceFinalizeInvoiceParams{}); err != nil {
		logger.Error("Failed to finalize invoice", "error", err)
		return
	}
	if _, err = invoice.Pay(in.ID, nil); err != nil {
		logger.Error("Failed to pay invoice", "error", err)
	}
}

func (a *API) payChargesHandler(c *gin.Context) {
	logger := middleware.GetLogger(c)

	acct, ok := a.getAccount(c)
	if !ok {
		return
	}

	acct, err := a.mgr.SettleCharges(c, acct.ID)
	if err != nil {
		if errors.Is(err, account.ErrInsufficientFunds) {
			c.JSON(http.StatusConflict, gin.H{"code": "INSUFFICIENT_FUNDS", "message": "Your balance does not cover your charges. Please add more funds."})
			return
		}
		logger.ErrorContext(c, "failed to pay charges", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, toAccountResponse(acct))
}

// syncProfileHandler refreshes the account's email and name from the
// identity provider.
func (a *API) syncProfileHandler(c *gin.Context) {
	logger := middleware.GetLogger(c)

	auth0ID, ok := middleware.GetAuth0ID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"code": "UNAUTHORIZED", "message": "Authentication required"})
		return
	}

	token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
	info, err := a.auth0Client.GetUserInfo(c, token)
	if err != nil {
		logger.ErrorContext(c, "failed to fetch user info", "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to fetch profile"})
		return
	}

	if err := a.ar.UpdateProfile(c, auth0ID, info.Email, info.Name); err != nil {
		logger.ErrorContext(c, "failed to update profile", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
