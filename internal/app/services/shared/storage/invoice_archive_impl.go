package storage

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"medledger-service/internal/app/contracts"
	"medledger-service/internal/app/models"
	"medledger-service/internal/pkg/exceptions"

	json "github.com/goccy/go-json"
	"github.com/minio/minio-go/v7"
)

var (
	invoiceArchiveInstance contracts.InvoiceArchive
	onceInvoiceArchive     sync.Once
)

type minioInvoiceArchive struct {
	MinioClient *minio.Client
	BucketName  string
}

func NewMinioInvoiceArchive(minioClient *minio.Client, bucketName string) contracts.InvoiceArchive {
	onceInvoiceArchive.Do(func() {
		invoiceArchiveInstance = &minioInvoiceArchive{
			MinioClient: minioClient,
			BucketName:  bucketName,
		}
	})
	return invoiceArchiveInstance
}

// Archive stores a JSON copy of the invoice keyed by its number. Invoices
// are immutable, so an object is only ever written once.
func (m *minioInvoiceArchive) Archive(ctx context.Context, invoice *models.Invoice) error {
	body, err := json.Marshal(invoice)
	if err != nil {
		return exceptions.ErrCannotMarshalJSON(err)
	}

	objectName := fmt.Sprintf("%s/%s.json", invoice.IssueDate.UTC().Format("2006/01"), invoice.InvoiceNumber)
	_, err = m.MinioClient.PutObject(ctx, m.BucketName, objectName, bytes.NewReader(body), int64(len(body)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return exceptions.ErrMinioPutObject(err, m.BucketName)
	}
	return nil
}
