package ledgerstore

import (
	"bytes"
	"context"
	"errors"
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

const serviceSubject = "medledger-sync"

var (
	ledgerStoreClientInstance contracts.LedgerStoreClient
	onceLedgerStoreClient     sync.Once
)

type ledgerStoreClient struct {
	BaseUrl    string
	Log        *zap.Logger
	JWTManager *jwtmanager.JWTManager
	client     *http.Client
}

func NewLedgerStoreClient(cfg *config.InternalConfig, jwtMgr *jwtmanager.JWTManager, logger *zap.Logger) contracts.LedgerStoreClient {
	onceLedgerStoreClient.Do(func() {
		timeout := time.Duration(cfg.LedgerStore.RequestTimeoutInSeconds) * time.Second
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		ledgerStoreClientInstance = &ledgerStoreClient{
			BaseUrl:    cfg.LedgerStore.BaseUrl,
			Log:        logger,
			JWTManager: jwtMgr,
			client:     &http.Client{Timeout: timeout},
		}
	})
	return ledgerStoreClientInstance
}

func (c *ledgerStoreClient) Create(ctx context.Context, record *models.PaymentRecord) (string, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	c.Log.Info("ledgerStoreClient.Create called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingRecordIDKey, record.ID),
	)

	doc := NewRecordDocument(record)
	doc.ID = ""
	body, err := json.Marshal(doc)
	if err != nil {
		return "", exceptions.ErrCannotMarshalJSON(err)
	}

	resp, err := c.send(ctx, constvars.MethodPost, c.BaseUrl, body)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != constvars.StatusOK && resp.StatusCode != constvars.StatusCreated {
		return "", c.rejected(requestID, "Create", resp)
	}

	var created RecordDocument
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return "", exceptions.NewSyncError(exceptions.SyncRemoteRejected, err)
	}
	if created.ID == "" {
		return "", exceptions.NewSyncError(exceptions.SyncRemoteRejected, fmt.Errorf("remote store returned no id"))
	}

	c.Log.Info("ledgerStoreClient.Create succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingRemoteIDKey, created.ID),
	)
	return created.ID, nil
}

func (c *ledgerStoreClient) Update(ctx context.Context, remoteID string, record *models.PaymentRecord) error {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	c.Log.Info("ledgerStoreClient.Update called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingRemoteIDKey, remoteID),
	)

	doc := NewRecordDocument(record)
	doc.ID = remoteID
	body, err := json.Marshal(doc)
	if err != nil {
		return exceptions.ErrCannotMarshalJSON(err)
	}

	resp, err := c.send(ctx, constvars.MethodPut, c.BaseUrl+"/"+remoteID, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != constvars.StatusOK {
		return c.rejected(requestID, "Update", resp)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (c *ledgerStoreClient) List(ctx context.Context) ([]models.PaymentRecord, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

	resp, err := c.send(ctx, constvars.MethodGet, c.BaseUrl, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != constvars.StatusOK {
		return nil, c.rejected(requestID, "List", resp)
	}

	var docs []RecordDocument
	if err := json.NewDecoder(resp.Body).Decode(&docs); err != nil {
		return nil, exceptions.NewSyncError(exceptions.SyncRemoteRejected, err)
	}

	records := make([]models.PaymentRecord, 0, len(docs))
	for i := range docs {
		records = append(records, docs[i].Normalize())
	}

	c.Log.Info("ledgerStoreClient.List succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int("count", len(records)),
	)
	return records, nil
}

func (c *ledgerStoreClient) send(ctx context.Context, method, url string, body []byte) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, exceptions.ErrCreateHTTPRequest(err)
	}
	req.Header.Set(constvars.HeaderContentType, constvars.MIMEApplicationJSON)

	tokenOut, err := c.JWTManager.CreateToken(ctx, &jwtmanager.CreateTokenInput{Subject: serviceSubject})
	if err != nil {
		return nil, err
	}
	req.Header.Set(constvars.HeaderAuthorization, "Bearer "+tokenOut.Token)

	resp, err := c.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, exceptions.NewSyncError(exceptions.SyncTimeout, err)
		}
		return nil, exceptions.NewSyncError(exceptions.SyncNetworkUnavailable, err)
	}
	return resp, nil
}

func (c *ledgerStoreClient) rejected(requestID, operation string, resp *http.Response) error {
	bodyBytes, _ := io.ReadAll(resp.Body)
	err := fmt.Errorf("remote store returned %d: %s", resp.StatusCode, string(bodyBytes))
	c.Log.Error("ledgerStoreClient."+operation+" rejected by remote store",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int("status_code", resp.StatusCode),
	)
	return exceptions.NewSyncError(exceptions.SyncRemoteRejected, err)
}
