package ports

import "github.com/cp25sy5-modjot/ocr-wrapper-service/internal/domain"

type EncoderPort interface {
	Encode(batch domain.BatchResult, format domain.Format) (domain.OutputArtifact, error)
}
