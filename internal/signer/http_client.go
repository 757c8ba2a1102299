package signer

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"
)

const defaultTimeout = 30 * time.Second

// HTTPClient talks to a wallet-provisioning service that holds the user's
// key, signs the payload and submits it, optionally sponsoring fees.
type HTTPClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
	log     *logrus.Logger
}

func NewHTTPClient(baseURL, apiKey string, log *logrus.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: defaultTimeout},
		log:     log,
	}
}

type signAndSendRequest struct {
	Transaction string `json:"transaction"`
	Address     string `json:"address"`
	Chain       string `json:"chain"`
	Sponsor     bool   `json:"sponsor"`
}

type signAndSendResponse struct {
	Signature string `json:"signature"`
	Error     string `json:"error,omitempty"`
}

func (c *HTTPClient) SignAndSend(ctx context.Context, req SubmitRequest) (Submission, error) {
	body, err := json.Marshal(signAndSendRequest{
		Transaction: base64.StdEncoding.EncodeToString(req.Transaction),
		Address:     req.Address,
		Chain:       req.Chain,
		Sponsor:     req.Sponsor,
	})
	if err != nil {
		return Submission{}, &SubmissionError{Reason: "failed to encode request", Err: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/transactions/sign-and-send", bytes.NewReader(body))
	if err != nil {
		return Submission{}, &SubmissionError{Reason: "failed to build request", Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	c.log.WithFields(logrus.Fields{
		"address": req.Address,
		"chain":   req.Chain,
		"sponsor": req.Sponsor,
	}).Debug("submitting transaction to signing service")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return Submission{}, &SubmissionError{Reason: "request failed", Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Submission{}, &SubmissionError{Reason: "failed to read response", Err: err}
	}

	var out signAndSendResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return Submission{}, &SubmissionError{
			Reason: fmt.Sprintf("unexpected response (status %d)", resp.StatusCode),
			Err:    err,
		}
	}

	if resp.StatusCode != http.StatusOK {
		reason := out.Error
		if reason == "" {
			reason = fmt.Sprintf("signing service returned status %d", resp.StatusCode)
		}
		return Submission{}, &SubmissionError{Reason: reason}
	}

	sigBytes, err := base64.StdEncoding.DecodeString(out.Signature)
	if err != nil {
		return Submission{}, &SubmissionError{Reason: "malformed signature in response", Err: err}
	}
	if len(sigBytes) != len(solana.Signature{}) {
		return Submission{}, &SubmissionError{
			Reason: fmt.Sprintf("malformed signature in response: %d bytes", len(sigBytes)),
		}
	}

	var sig solana.Signature
	copy(sig[:], sigBytes)

	return Submission{Signature: sig}, nil
}
