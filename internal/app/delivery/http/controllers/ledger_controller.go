package controllers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"medledger-service/internal/app/contracts"
	"medledger-service/internal/pkg/constvars"
	"medledger-service/internal/pkg/dto/requests"
	"medledger-service/internal/pkg/exceptions"
	"medledger-service/internal/pkg/utils"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
	"go.uber.org/zap"
)

type LedgerController struct {
	Log           *zap.Logger
	LedgerUsecase contracts.LedgerUsecase
}

var (
	ledgerControllerInstance *LedgerController
	onceLedgerController     sync.Once
)

func NewLedgerController(logger *zap.Logger, ledgerUsecase contracts.LedgerUsecase) *LedgerController {
	onceLedgerController.Do(func() {
		ledgerControllerInstance = &LedgerController{
			Log:           logger,
			LedgerUsecase: ledgerUsecase,
		}
	})
	return ledgerControllerInstance
}

func (ctrl *LedgerController) RecordPayment(w http.ResponseWriter, r *http.Request) {
	requestID, ok := r.Context().Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	if !ok || requestID == "" {
		ctrl.Log.Error("LedgerController.RecordPayment requestID not found in context")
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrMissingRequestID(nil))
		return
	}
	ctrl.Log.Info("LedgerController.RecordPayment called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
	)

	var input requests.PaymentEntryInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrCannotParseJSON(err))
		return
	}
	defer r.Body.Close()

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	record, err := ctrl.LedgerUsecase.RecordPayment(ctx, &input)
	if err != nil {
		ctrl.Log.Error("LedgerController.RecordPayment error from usecase",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.AsCustomError(err))
		return
	}

	ctrl.Log.Info("LedgerController.RecordPayment succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingRecordIDKey, record.ID),
	)
	utils.BuildSuccessResponse(w, constvars.StatusCreated, constvars.PaymentRecordedSuccessMessage, record)
}

func (ctrl *LedgerController) ListRecords(w http.ResponseWriter, r *http.Request) {
	requestID, ok := r.Context().Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	if !ok || requestID == "" {
		ctrl.Log.Error("LedgerController.ListRecords requestID not found in context")
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrMissingRequestID(nil))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	records, err := ctrl.LedgerUsecase.ListRecords(ctx)
	if err != nil {
		ctrl.Log.Error("LedgerController.ListRecords error from usecase",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.AsCustomError(err))
		return
	}

	ctrl.Log.Info("LedgerController.ListRecords succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int("record_count", len(records)),
	)
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.PaymentRecordsFetchedMessage, records)
}

func (ctrl *LedgerController) RetrySync(w http.ResponseWriter, r *http.Request) {
	requestID, ok := r.Context().Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	if !ok || requestID == "" {
		ctrl.Log.Error("LedgerController.RetrySync requestID not found in context")
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrMissingRequestID(nil))
		return
	}

	recordID := chi.URLParam(r, "recordID")
	if recordID == "" {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrURLParamIDValidation(nil, "recordID"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	record, err := ctrl.LedgerUsecase.RetrySync(ctx, recordID)
	if err != nil {
		ctrl.Log.Error("LedgerController.RetrySync error from usecase",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingRecordIDKey, recordID),
			zap.Error(err),
		)
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.AsCustomError(err))
		return
	}

	ctrl.Log.Info("LedgerController.RetrySync succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingRecordIDKey, recordID),
	)
	utils.BuildSuccessResponse(w, constvars.StatusAccepted, constvars.PaymentRetryScheduledMessage, record)
}

func (ctrl *LedgerController) DeleteRecord(w http.ResponseWriter, r *http.Request) {
	requestID, ok := r.Context().Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	if !ok || requestID == "" {
		ctrl.Log.Error("LedgerController.DeleteRecord requestID not found in context")
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrMissingRequestID(nil))
		return
	}

	recordID := chi.URLParam(r, "recordID")
	if recordID == "" {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrURLParamIDValidation(nil, "recordID"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if err := ctrl.LedgerUsecase.DeleteRecord(ctx, recordID); err != nil {
		ctrl.Log.Error("LedgerController.DeleteRecord error from usecase",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingRecordIDKey, recordID),
			zap.Error(err),
		)
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.AsCustomError(err))
		return
	}

	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.PaymentRecordDeletedMessage, nil)
}
