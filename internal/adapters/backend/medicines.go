package backend

import (
	"context"
	"strconv"
	"strings"
	"time"

	"medication-reminder/internal/domain/medicines"
	"medication-reminder/internal/platform/httpclient"
)

// MedicineInput es lo que arma la UI del cuidador. Stock viaja como texto del formulario.
type MedicineInput struct {
	ID string // solo UpdateMedicine

	PatientEmail   string
	CaregiverEmail string
	Name           string
	Time           string

	ScheduleType string
	SelectedDays []int
	OneTimeDate  string
	CustomDates  []string

	Stock        string
	Instructions string
	VoiceFileID  string
}

// InputFrom arma un MedicineInput desde una medicina ya leída (para editarla).
func InputFrom(m medicines.Medicine) MedicineInput {
	rec := medicines.ToRecord(m)
	return MedicineInput{
		ID:             rec.ID,
		PatientEmail:   rec.PatientEmail,
		CaregiverEmail: rec.CaregiverEmail,
		Name:           rec.Name,
		Time:           rec.Time,
		ScheduleType:   rec.ScheduleType,
		SelectedDays:   rec.SelectedDays,
		OneTimeDate:    rec.OneTimeDate,
		CustomDates:    rec.CustomDates,
		Stock:          strconv.Itoa(int(rec.Stock)),
		Instructions:   rec.Instructions,
		VoiceFileID:    rec.VoiceFileID,
	}
}

// normalizeInput valida y completa defaults antes de enviar. Las fallas son KindInvalid.
func normalizeInput(in MedicineInput) (medicines.Record, error) {
	stock, err := medicines.ParseStock(in.Stock)
	if err != nil {
		return medicines.Record{}, httpclient.Fail(httpclient.KindInvalid, "%v", err)
	}

	patient := strings.TrimSpace(in.PatientEmail)
	caregiver := strings.TrimSpace(in.CaregiverEmail)
	if patient == "" || caregiver == "" {
		return medicines.Record{}, httpclient.Fail(httpclient.KindInvalid, "patient and caregiver email are required")
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return medicines.Record{}, httpclient.Fail(httpclient.KindInvalid, "medicine name is required")
	}

	at, err := medicines.NormalizeTime(in.Time)
	if err != nil {
		return medicines.Record{}, httpclient.Fail(httpclient.KindInvalid, "%v", err)
	}

	st := strings.TrimSpace(in.ScheduleType)
	if st == "" {
		st = string(medicines.ScheduleDaily)
	}

	days := medicines.DayList{}
	days = append(days, in.SelectedDays...)
	dates := medicines.DateList{}
	dates = append(dates, in.CustomDates...)

	return medicines.Record{
		ID:             strings.TrimSpace(in.ID),
		PatientEmail:   patient,
		CaregiverEmail: caregiver,
		Name:           name,
		Time:           at,
		ScheduleType:   st,
		SelectedDays:   days,
		OneTimeDate:    strings.TrimSpace(in.OneTimeDate),
		CustomDates:    dates,
		Stock:          medicines.Count(stock),
		Instructions:   in.Instructions,
		VoiceFileID:    strings.TrimSpace(in.VoiceFileID),
		TakenDates:     medicines.DateList{},
	}, nil
}

func (c *Client) AddMedicine(ctx context.Context, in MedicineInput) (Reply, error) {
	rec, err := normalizeInput(in)
	if err != nil {
		return Reply{}, err
	}
	rec.ID = ""
	return c.post(ctx, ActionAddMedicine, rec)
}

// UpdateMedicine reemplaza la medicina. Dos updates concurrentes sobre el mismo id
// compiten en el backend (last write wins); acá no se detecta el conflicto.
func (c *Client) UpdateMedicine(ctx context.Context, in MedicineInput) (Reply, error) {
	rec, err := normalizeInput(in)
	if err != nil {
		return Reply{}, err
	}
	if rec.ID == "" {
		return Reply{}, httpclient.Fail(httpclient.KindInvalid, "medicine id is required")
	}
	return c.post(ctx, ActionUpdateMedicine, rec)
}

func (c *Client) DeleteMedicine(ctx context.Context, id string) (Reply, error) {
	return c.post(ctx, ActionDeleteMedicine, map[string]string{"id": strings.TrimSpace(id)})
}

func (c *Client) GetMedicinesByPatient(ctx context.Context, patientEmail string) ([]medicines.Medicine, error) {
	return c.listMedicines(ctx, ActionGetMedicinesByPatient, "patientEmail", patientEmail)
}

func (c *Client) GetMedicinesByCaregiver(ctx context.Context, caregiverEmail string) ([]medicines.Medicine, error) {
	return c.listMedicines(ctx, ActionGetMedicinesByCaregiver, "caregiverEmail", caregiverEmail)
}

func (c *Client) listMedicines(ctx context.Context, action, key, email string) ([]medicines.Medicine, error) {
	raw, err := c.Get(ctx, action, map[string]string{key: strings.TrimSpace(email)})
	if err != nil {
		return []medicines.Medicine{}, err
	}

	recs := decodeList[medicines.Record](c, raw, action)
	out := make([]medicines.Medicine, 0, len(recs))
	for _, r := range recs {
		m := r.Medicine()
		if m.ID == "" {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

// MarkMedicineAsTaken manda la fecha local del dispositivo para que la marca coincida
// con la fecha que usa el motor de alertas. Reintentar es seguro: el backend no duplica.
func (c *Client) MarkMedicineAsTaken(ctx context.Context, id string) (Reply, error) {
	return c.MarkMedicineAsTakenOn(ctx, id, c.now())
}

func (c *Client) MarkMedicineAsTakenOn(ctx context.Context, id string, at time.Time) (Reply, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Reply{}, httpclient.Fail(httpclient.KindInvalid, "medicine id is required")
	}
	return c.post(ctx, ActionMarkMedicineAsTaken, map[string]string{
		"id":   id,
		"date": medicines.FormatDate(at),
	})
}
