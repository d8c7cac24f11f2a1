package order

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/AlmMz1905/Ingenieria-de-Software-2025/internal/domain"
	"github.com/AlmMz1905/Ingenieria-de-Software-2025/internal/domain/entity"
	"github.com/AlmMz1905/Ingenieria-de-Software-2025/internal/domain/repository"
)

// ReceiptLine línea del comprobante con el nombre del medicamento resuelto.
type ReceiptLine struct {
	MedicationName string
	Presentation   string
	Quantity       int64
	UnitPrice      decimal.Decimal
	Subtotal       decimal.Decimal
}

// ReceiptPDFGenerator genera el comprobante PDF de un pedido.
type ReceiptPDFGenerator interface {
	GenerateReceiptPDF(
		ctx context.Context,
		ord *entity.Order,
		pharmacy *entity.Pharmacy,
		client *entity.Client,
		lines []ReceiptLine,
	) ([]byte, error)
}

// PDFUseCase arma el comprobante de un pedido para descarga.
type PDFUseCase struct {
	orderRepo      repository.OrderRepository
	userRepo       repository.UserRepository
	medicationRepo repository.MedicationRepository
	generator      ReceiptPDFGenerator
}

// NewPDFUseCase construye el caso de uso.
func NewPDFUseCase(
	orderRepo repository.OrderRepository,
	userRepo repository.UserRepository,
	medicationRepo repository.MedicationRepository,
	generator ReceiptPDFGenerator,
) *PDFUseCase {
	return &PDFUseCase{
		orderRepo:      orderRepo,
		userRepo:       userRepo,
		medicationRepo: medicationRepo,
		generator:      generator,
	}
}

// DownloadReceiptPDF recupera pedido, farmacia, cliente y líneas y genera el
// PDF. Retorna (bytes, filename, nil) o el error de dominio que corresponda.
func (uc *PDFUseCase) DownloadReceiptPDF(ctx context.Context, callerID, orderID string) ([]byte, string, error) {
	ord, err := uc.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: obtener pedido: %w", err)
	}
	if ord == nil {
		return nil, "", domain.ErrNotFound
	}
	if callerID != ord.ClientID && callerID != ord.PharmacyID {
		return nil, "", domain.ErrForbidden
	}

	pharmacy, err := uc.userRepo.GetPharmacyByID(ord.PharmacyID)
	if err != nil || pharmacy == nil {
		return nil, "", fmt.Errorf("pdf: obtener farmacia: %w", domain.ErrNotFound)
	}
	client, err := uc.userRepo.GetClientByID(ord.ClientID)
	if err != nil || client == nil {
		return nil, "", fmt.Errorf("pdf: obtener cliente: %w", domain.ErrNotFound)
	}

	orderLines, err := uc.orderRepo.GetLinesByOrderID(ord.ID)
	if err != nil {
		return nil, "", err
	}
	lines := make([]ReceiptLine, 0, len(orderLines))
	for _, l := range orderLines {
		med, err := uc.medicationRepo.GetByID(l.MedicationID)
		if err != nil || med == nil {
			return nil, "", fmt.Errorf("pdf: obtener medicamento %s: %w", l.MedicationID, domain.ErrNotFound)
		}
		lines = append(lines, ReceiptLine{
			MedicationName: med.CommercialName,
			Presentation:   med.Presentation,
			Quantity:       l.Quantity,
			UnitPrice:      l.UnitPrice,
			Subtotal:       l.Subtotal(),
		})
	}

	pdfBytes, err := uc.generator.GenerateReceiptPDF(ctx, ord, pharmacy, client, lines)
	if err != nil {
		return nil, "", err
	}
	filename := fmt.Sprintf("pedido-%s.pdf", ord.ID)
	return pdfBytes, filename, nil
}
