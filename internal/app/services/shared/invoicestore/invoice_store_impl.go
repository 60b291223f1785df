package invoicestore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"medledger-service/internal/app/config"
	"medledger-service/internal/app/contracts"
	"medledger-service/internal/app/models"
	"medledger-service/internal/app/services/shared/jwtmanager"
	"medledger-service/internal/pkg/constvars"
	"medledger-service/internal/pkg/exceptions"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"
)

const serviceSubject = "medledger-invoices"

var (
	invoiceStoreClientInstance contracts.InvoiceStoreClient
	onceInvoiceStoreClient     sync.Once
)

type invoiceStoreClient struct {
	BaseUrl    string
	Log        *zap.Logger
	JWTManager *jwtmanager.JWTManager
	client     *http.Client
}

func NewInvoiceStoreClient(cfg *config.InternalConfig, jwtMgr *jwtmanager.JWTManager, logger *zap.Logger) contracts.InvoiceStoreClient {
	onceInvoiceStoreClient.Do(func() {
		timeout := time.Duration(cfg.InvoiceStore.RequestTimeoutInSeconds) * time.Second
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		invoiceStoreClientInstance = &invoiceStoreClient{
			BaseUrl:    cfg.InvoiceStore.BaseUrl,
			Log:        logger,
			JWTManager: jwtMgr,
			client:     &http.Client{Timeout: timeout},
		}
	})
	return invoiceStoreClientInstance
}

func (c *invoiceStoreClient) Create(ctx context.Context, invoice *models.Invoice) (string, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	c.Log.Info("invoiceStoreClient.Create called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingInvoiceNumberKey, invoice.InvoiceNumber),
	)

	body, err := json.Marshal(invoice)
	if err != nil {
		return "", exceptions.ErrCannotMarshalJSON(err)
	}

	req, err := http.NewRequestWithContext(ctx, constvars.MethodPost, c.BaseUrl, bytes.NewReader(body))
	if err != nil {
		return "", exceptions.ErrCreateHTTPRequest(err)
	}
	req.Header.Set(constvars.HeaderContentType, constvars.MIMEApplicationJSON)

	tokenOut, err := c.JWTManager.CreateToken(ctx, &jwtmanager.CreateTokenInput{Subject: serviceSubject})
	if err != nil {
		return "", err
	}
	req.Header.Set(constvars.HeaderAuthorization, "Bearer "+tokenOut.Token)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", exceptions.ErrSendHTTPRequest(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != constvars.StatusOK && resp.StatusCode != constvars.StatusCreated {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return "", exceptions.ErrSendHTTPRequest(fmt.Errorf("invoice store returned %d: %s", resp.StatusCode, string(bodyBytes)))
	}

	var created struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return "", exceptions.ErrCannotParseJSON(err)
	}

	c.Log.Info("invoiceStoreClient.Create succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingInvoiceNumberKey, invoice.InvoiceNumber),
		zap.String(constvars.LoggingRemoteIDKey, created.ID),
	)
	return created.ID, nil
}
