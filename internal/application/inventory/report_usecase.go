package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/Kardex-api/internal/domain"
	"github.com/jhoicas/Kardex-api/internal/domain/entity"
	"github.com/jhoicas/Kardex-api/internal/domain/repository"
)

// maxReportMovements tope de movimientos por documento exportado.
const maxReportMovements = 5000

// KardexReport datos de un Kardex listo para exportar.
type KardexReport struct {
	Product     entity.Product
	Movements   []*entity.InventoryMovement
	From        *time.Time
	To          *time.Time
	GeneratedAt time.Time
	Truncated   bool
}

// KardexPDFGenerator genera la representación PDF de un Kardex.
type KardexPDFGenerator interface {
	GenerateKardexPDF(ctx context.Context, report *KardexReport) ([]byte, error)
}

// KardexXMLExporter genera el XML canónico de auditoría y su digest.
type KardexXMLExporter interface {
	ExportKardexXML(ctx context.Context, report *KardexReport) (xmlBytes []byte, digest string, err error)
}

// ReportUseCase exporta el Kardex de un producto (PDF y XML de auditoría).
type ReportUseCase struct {
	ledger      *LedgerUseCase
	productRepo repository.ProductRepository
	pdf         KardexPDFGenerator
	xml         KardexXMLExporter
}

// NewReportUseCase construye el caso de uso.
func NewReportUseCase(
	ledger *LedgerUseCase,
	productRepo repository.ProductRepository,
	pdf KardexPDFGenerator,
	xml KardexXMLExporter,
) *ReportUseCase {
	return &ReportUseCase{ledger: ledger, productRepo: productRepo, pdf: pdf, xml: xml}
}

// BuildReport carga el producto y su Kardex ascendente en el rango indicado.
func (uc *ReportUseCase) BuildReport(ctx context.Context, productID string, q LedgerQuery) (*KardexReport, error) {
	q.Descending = false
	seq, err := uc.ledger.GetLedger(ctx, productID, q)
	if err != nil {
		return nil, err
	}
	// una fila más que el tope para saber si se truncó
	movs, err := CollectLedger(seq, maxReportMovements+1)
	if err != nil {
		return nil, fmt.Errorf("reporte: leer kardex: %w", err)
	}
	truncated := len(movs) > maxReportMovements
	if truncated {
		movs = movs[:maxReportMovements]
	}
	product, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("reporte: obtener producto: %w", err)
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	return &KardexReport{
		Product:     *product,
		Movements:   movs,
		From:        q.From,
		To:          q.To,
		GeneratedAt: uc.ledger.now(),
		Truncated:   truncated,
	}, nil
}

// DownloadKardexPDF devuelve los bytes del PDF y el nombre de archivo sugerido.
func (uc *ReportUseCase) DownloadKardexPDF(ctx context.Context, productID string, q LedgerQuery) ([]byte, string, error) {
	report, err := uc.BuildReport(ctx, productID, q)
	if err != nil {
		return nil, "", err
	}
	b, err := uc.pdf.GenerateKardexPDF(ctx, report)
	if err != nil {
		return nil, "", fmt.Errorf("reporte: generar pdf: %w", err)
	}
	return b, fmt.Sprintf("kardex_%s.pdf", report.Product.Code), nil
}

// ExportKardexXML devuelve el XML canónico, su digest SHA-256 (hex) y el nombre de archivo sugerido.
func (uc *ReportUseCase) ExportKardexXML(ctx context.Context, productID string, q LedgerQuery) ([]byte, string, string, error) {
	report, err := uc.BuildReport(ctx, productID, q)
	if err != nil {
		return nil, "", "", err
	}
	b, digest, err := uc.xml.ExportKardexXML(ctx, report)
	if err != nil {
		return nil, "", "", fmt.Errorf("reporte: generar xml: %w", err)
	}
	return b, digest, fmt.Sprintf("kardex_%s.xml", report.Product.Code), nil
}
