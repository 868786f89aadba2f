package financial

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"crm-backend/internal/apperr"
	"crm-backend/internal/audit"
	"crm-backend/internal/auth"
	"crm-backend/internal/models"
	"crm-backend/internal/paging"
	"crm-backend/internal/store"
	"crm-backend/internal/web"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
)

// FormField is the multipart field carrying the import file.
const FormField = "file"

type Store interface {
	List(ctx context.Context, f store.TransactionFilter, p paging.Params) ([]models.FinancialTransaction, int64, error)
	Summary(ctx context.Context, f store.TransactionFilter) (*store.TransactionSummary, error)
	FindByID(ctx context.Context, id uint) (*models.FinancialTransaction, error)
	Create(ctx context.Context, t *models.FinancialTransaction) error
	CreateBatch(ctx context.Context, txs []models.FinancialTransaction) error
	Update(ctx context.Context, t *models.FinancialTransaction) error
	Delete(ctx context.Context, id uint) error
}

// ImportCounter is told how many rows each import stored and rejected.
type ImportCounter interface {
	RowsImported(n int)
	RowsRejected(n int)
}

// TransactionRequest is used for create and update. On update only the keys
// present in the body are applied.
type TransactionRequest struct {
	Description     *string    `json:"description"`
	Bank            *string    `json:"bank"`
	Amount          web.Amount `json:"amount"`
	Type            *string    `json:"type"`
	TransactionDate *string    `json:"transaction_date"`
}

// toRow renders the request as an import row over the current values of tx,
// so a single transaction is validated exactly like an imported one.
func (r *TransactionRequest) toRow(tx models.FinancialTransaction) map[string]string {
	row := map[string]string{
		"description":      tx.Description,
		"bank":             tx.Bank,
		"type":             string(tx.Type),
		"transaction_date": tx.TransactionDate.String(),
	}
	if tx.ID != 0 {
		row["amount"] = tx.Amount.String()
	}
	if r.Description != nil {
		row["description"] = *r.Description
	}
	if r.Bank != nil {
		row["bank"] = *r.Bank
	}
	if r.Amount.Set {
		row["amount"] = r.Amount.String()
	}
	if r.Type != nil {
		row["type"] = *r.Type
	}
	if r.TransactionDate != nil {
		row["transaction_date"] = *r.TransactionDate
	}
	return row
}

func (r *TransactionRequest) build(current models.FinancialTransaction) (*models.FinancialTransaction, error) {
	row := r.toRow(current)
	tx, problem := parseRow(func(col string) string { return strings.TrimSpace(row[col]) })
	if problem != "" {
		return nil, apperr.Validation(problem)
	}
	tx.ID = current.ID
	tx.CreatedAt = current.CreatedAt
	return tx, nil
}

// ImportResponse summarizes an upload. Validation and insertion failures are
// reported separately.
type ImportResponse struct {
	Error                  string                        `json:"error,omitempty"`
	Message                string                        `json:"message"`
	InsertedRows           int                           `json:"insertedRows"`
	InsertionErrors        int                           `json:"insertionErrors"`
	ValidationErrors       int                           `json:"validationErrors"`
	ValidationErrorDetails []string                      `json:"validationErrorDetails"`
	InsertionErrorDetails  []string                      `json:"insertionErrorDetails"`
	Data                   []models.FinancialTransaction `json:"data"`
}

type Handler struct {
	txs     Store
	audit   audit.Recorder
	counter ImportCounter
	tempDir string
	logger  *log.Logger
}

func NewHandler(txs Store, rec audit.Recorder, counter ImportCounter, logger *log.Logger) *Handler {
	return &Handler{txs: txs, audit: rec, counter: counter, tempDir: os.TempDir(), logger: logger}
}

func parseFilter(c *fiber.Ctx) (store.TransactionFilter, error) {
	f := store.TransactionFilter{
		Bank:   strings.TrimSpace(c.Query("bank")),
		Search: strings.TrimSpace(c.Query("search")),
	}
	if raw := strings.TrimSpace(c.Query("type")); raw != "" {
		typ, ok := models.ParseTransactionType(raw)
		if !ok {
			return f, apperr.Validation("type must be Credit or Debit")
		}
		f.Type = typ
	}
	var err error
	if f.StartDate, err = web.QueryDate(c, "start_date"); err != nil {
		return f, err
	}
	if f.EndDate, err = web.QueryDate(c, "end_date"); err != nil {
		return f, err
	}
	if f.StartDate != nil && f.EndDate != nil && f.EndDate.Before(*f.StartDate) {
		return f, apperr.Validation("end_date must not be before start_date")
	}
	return f, nil
}

// GET /api/financial-transactions
func (h *Handler) List() fiber.Handler {
	return func(c *fiber.Ctx) error {
		f, err := parseFilter(c)
		if err != nil {
			return err
		}
		p := paging.FromQuery(c.Query("page"), c.Query("limit"))
		rows, total, err := h.txs.List(c.UserContext(), f, p)
		if err != nil {
			return err
		}
		return c.JSON(paging.NewResult(rows, total, p))
	}
}

// GET /api/financial-transactions/summary
func (h *Handler) Summary() fiber.Handler {
	return func(c *fiber.Ctx) error {
		f, err := parseFilter(c)
		if err != nil {
			return err
		}
		sum, err := h.txs.Summary(c.UserContext(), f)
		if err != nil {
			return err
		}
		return c.JSON(sum)
	}
}

// GET /api/financial-transactions/:id
func (h *Handler) Get() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := web.ParseID(c, "id")
		if err != nil {
			return err
		}
		tx, err := h.txs.FindByID(c.UserContext(), id)
		if err != nil {
			return err
		}
		return c.JSON(tx)
	}
}

// POST /api/financial-transactions
func (h *Handler) Create() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body TransactionRequest
		if err := web.BindJSON(c, &body); err != nil {
			return err
		}
		tx, err := body.build(models.FinancialTransaction{})
		if err != nil {
			return err
		}
		if err := h.txs.Create(c.UserContext(), tx); err != nil {
			return err
		}

		h.audit.Record(c.UserContext(), audit.Entry{
			User:        auth.CurrentUser(c),
			EntityType:  "financial_transaction",
			EntityID:    tx.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("created %s transaction of %s", strings.ToLower(string(tx.Type)), tx.Amount),
			After:       tx,
		})

		return c.Status(fiber.StatusCreated).JSON(tx)
	}
}

// PUT /api/financial-transactions/:id
func (h *Handler) Update() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := web.ParseID(c, "id")
		if err != nil {
			return err
		}
		var body TransactionRequest
		if err := web.BindJSON(c, &body); err != nil {
			return err
		}
		current, err := h.txs.FindByID(c.UserContext(), id)
		if err != nil {
			return err
		}
		tx, err := body.build(*current)
		if err != nil {
			return err
		}
		if err := h.txs.Update(c.UserContext(), tx); err != nil {
			return err
		}

		h.audit.Record(c.UserContext(), audit.Entry{
			User:        auth.CurrentUser(c),
			EntityType:  "financial_transaction",
			EntityID:    tx.ID,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("updated transaction #%d", tx.ID),
			Before:      current,
			After:       tx,
		})

		return c.JSON(tx)
	}
}

// DELETE /api/financial-transactions/:id
func (h *Handler) Delete() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := web.ParseID(c, "id")
		if err != nil {
			return err
		}
		tx, err := h.txs.FindByID(c.UserContext(), id)
		if err != nil {
			return err
		}
		if err := h.txs.Delete(c.UserContext(), id); err != nil {
			return err
		}

		h.audit.Record(c.UserContext(), audit.Entry{
			User:        auth.CurrentUser(c),
			EntityType:  "financial_transaction",
			EntityID:    id,
			Action:      models.AuditActionDelete,
			Description: fmt.Sprintf("deleted transaction #%d", id),
			Before:      tx,
		})

		return c.JSON(fiber.Map{"message": "Transaction deleted successfully"})
	}
}

// POST /api/financial-transactions/upload[?atomic=true]
//
// Rows are inserted one by one and a failed insert does not stop the rest.
// With atomic=true all rows go in one database transaction instead.
func (h *Handler) Upload() fiber.Handler {
	return func(c *fiber.Ctx) error {
		file, err := c.FormFile(FormField)
		if err != nil {
			return apperr.Validation("No file uploaded")
		}
		ext := strings.ToLower(filepath.Ext(file.Filename))
		if !Formats[ext] {
			return apperr.Validation("Only .csv, .xlsx and .xls files are allowed")
		}

		tmp, err := os.CreateTemp(h.tempDir, "transactions-*"+ext)
		if err != nil {
			return apperr.Internal(err, "could not create temp file")
		}
		path := tmp.Name()
		tmp.Close()
		defer func() {
			if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
				h.logger.WithError(err).WithField("path", path).Warn("could not remove temp import file")
			}
		}()

		if err := c.SaveFile(file, path); err != nil {
			return apperr.Internal(err, "could not save upload")
		}

		rows, err := ReadRows(path)
		if err != nil {
			h.logger.WithError(err).WithField("file", file.Filename).Warn("could not read import file")
			return apperr.Validation("Could not read file, upload a valid CSV, XLSX or XLS file")
		}
		parsed, err := ParseRows(rows)
		if err != nil {
			return apperr.Validation(err.Error())
		}

		h.counter.RowsRejected(len(parsed.Errors))
		if len(parsed.Data) == 0 {
			return apperr.Validation("No valid rows found in file").WithDetails(parsed.Errors)
		}

		ctx := c.UserContext()
		resp := ImportResponse{
			ValidationErrors:       len(parsed.Errors),
			ValidationErrorDetails: parsed.Errors,
			InsertionErrorDetails:  []string{},
			Data:                   []models.FinancialTransaction{},
		}

		if c.QueryBool("atomic") {
			if err := h.txs.CreateBatch(ctx, parsed.Data); err != nil {
				return err
			}
			resp.Data = parsed.Data
		} else {
			for i := range parsed.Data {
				tx := parsed.Data[i]
				if err := h.txs.Create(ctx, &tx); err != nil {
					h.logger.WithError(err).WithField("description", tx.Description).Warn("could not insert imported transaction")
					resp.InsertionErrorDetails = append(resp.InsertionErrorDetails,
						fmt.Sprintf("Failed to insert '%s' (%s %s): %s", tx.Description, tx.Type, tx.Amount, insertMessage(err)))
					continue
				}
				resp.Data = append(resp.Data, tx)
			}
		}

		resp.InsertedRows = len(resp.Data)
		resp.InsertionErrors = len(resp.InsertionErrorDetails)
		resp.Message = fmt.Sprintf("Imported %d of %d transactions", resp.InsertedRows, len(parsed.Data)+len(parsed.Errors))
		h.counter.RowsImported(resp.InsertedRows)
		h.counter.RowsRejected(resp.InsertionErrors)

		h.audit.Record(ctx, audit.Entry{
			User:        auth.CurrentUser(c),
			EntityType:  "financial_transaction",
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("imported %d transactions from %s", resp.InsertedRows, file.Filename),
			After: fiber.Map{
				"file":              file.Filename,
				"inserted_rows":     resp.InsertedRows,
				"validation_errors": resp.ValidationErrors,
				"insertion_errors":  resp.InsertionErrors,
			},
		})

		status := fiber.StatusCreated
		if resp.InsertedRows == 0 {
			status = fiber.StatusInternalServerError
			resp.Error = "No transactions could be inserted"
		}
		return c.Status(status).JSON(resp)
	}
}

func insertMessage(err error) string {
	var ae *apperr.Error
	if errors.As(err, &ae) && ae.Kind != apperr.KindInternal {
		return ae.Message
	}
	return "database error"
}
