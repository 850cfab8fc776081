package xlsexport

import (
	"bytes"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	recordapimodels "glue-backend/models/api/record"
)

type Provider interface {
	ExportRecordList(list []recordapimodels.RecordView) (*bytes.Buffer, error)
}

var Instance Provider

func NewHandler() {
	Instance = impl{}
}

type impl struct{}

var recordHeaders = []string{"Title", "Type", "Status", "Creator", "Current step", "Created at"}

func (i impl) ExportRecordList(list []recordapimodels.RecordView) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			log.WithError(err).Error("ошибка закрытия файла")
		}
	}()
	sheet := "Sheet1"
	row := 0
	row, err := writeHeader(f, sheet, row, recordHeaders)
	if err != nil {
		return nil, errors.Wrap(err, "ошибка формирования заголовка в xlsx")
	}
	if len(list) != 0 {
		if err = writeRecordData(f, sheet, list, row); err != nil {
			return nil, errors.Wrap(err, "ошибка формирования таблицы с данными в xlsx")
		}
	}
	f.SetSheetName(sheet, "Records")
	return f.WriteToBuffer()
}

func writeRecordData(f *excelize.File, sheet string, list []recordapimodels.RecordView, row int) error {
	if err := applyDataCellStyle(f, sheet, 1, row+1, len(recordHeaders), len(list)+1); err != nil {
		return err
	}
	for _, item := range list {
		row++
		col := 1
		if err := writeColumn(f, sheet, col, row, item.Title); err != nil {
			return err
		}

		col++
		if err := writeColumn(f, sheet, col, row, item.EntityType); err != nil {
			return err
		}

		col++
		if err := writeColumn(f, sheet, col, row, item.StatusName); err != nil {
			return err
		}

		col++
		if err := writeColumn(f, sheet, col, row, item.CreatorName); err != nil {
			return err
		}

		col++
		if item.CurrentStep > 0 {
			if err := writeColumn(f, sheet, col, row, item.CurrentStep); err != nil {
				return err
			}
		}

		col++
		if err := writeColumn(f, sheet, col, row, item.CreatedAt.Format("02.01.2006 15:04")); err != nil {
			return err
		}
	}
	return nil
}
