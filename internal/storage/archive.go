package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"orderconfig/internal/cart"
)

// CartSnapshot is the archived form of a customer's cart after a confirm.
type CartSnapshot struct {
	CustomerID string          `json:"customer_id"`
	SessionID  string          `json:"session_id"`
	ArchivedAt time.Time       `json:"archived_at"`
	Lines      []cart.LineItem `json:"lines"`
}

func CartKey(customerID, sessionID string) string {
	return fmt.Sprintf("carts/%s/%s.json", customerID, sessionID)
}

// ArchiveCart writes the snapshot to carts/<customer>/<session>.json.
func (r *R2Client) ArchiveCart(ctx context.Context, customerID, sessionID string, lines []cart.LineItem) error {
	if lines == nil {
		lines = []cart.LineItem{}
	}
	body, err := json.Marshal(CartSnapshot{
		CustomerID: customerID,
		SessionID:  sessionID,
		ArchivedAt: time.Now().UTC(),
		Lines:      lines,
	})
	if err != nil {
		return err
	}

	_, err = r.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(r.bucket),
		Key:         aws.String(CartKey(customerID, sessionID)),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("put %s: %w", CartKey(customerID, sessionID), err)
	}
	return nil
}
