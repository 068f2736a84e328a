package handlers

import (
	"nekocare/internal/care"
	dom "nekocare/internal/domain"
	"nekocare/internal/dto"
	"nekocare/internal/service"
)

func feedToResponse(f service.FeedResult) dto.FeedResponse {
	return dto.FeedResponse{
		BusinessDate:       dto.FormatDate(f.BusinessDate),
		Slot:               string(f.Slot),
		Progress:           f.Progress,
		TotalCareTasks:     f.TotalCareTasks,
		CompletedCareTasks: f.CompletedCareTasks,
		CareItems:          itemsToResponses(f.CareItems),
		AlertItems:         itemsToResponses(f.AlertItems),
		AllItems:           itemsToResponses(f.AllItems),
		Overlay:            overlayToEntries(f.Overlay),
		Cats:               catsToResponses(f.Cats),
	}
}

func itemsToResponses(items []care.Item) []dto.ItemResponse {
	out := make([]dto.ItemResponse, len(items))
	for i, it := range items {
		out[i] = dto.ItemResponse{
			ID:       it.ID,
			Kind:     string(it.Kind),
			Title:    it.Title,
			Body:     it.Body,
			Severity: it.Severity,
			Urgent:   it.IsUrgent(),
			Payload:  payloadToResponse(it.Payload),
		}
		if it.CatID != 0 {
			id := it.CatID
			out[i].CatID = &id
		}
	}
	return out
}

func payloadToResponse(p care.Payload) any {
	switch p := p.(type) {
	case care.TaskPayload:
		return dto.TaskPayload{
			DefID:      p.DefID,
			Slot:       string(p.Slot),
			Frequency:  string(p.Frequency),
			Count:      p.Count,
			Goal:       p.Goal,
			LogType:    p.LogType,
			Optimistic: p.Optimistic,
		}
	case care.NoticePayload:
		return dto.NoticePayload{
			DefID:         p.DefID,
			ObservationID: p.ObservationID,
			Value:         p.Value,
			Choices:       p.Choices,
			Unrecorded:    p.Unrecorded,
			Optimistic:    p.Optimistic,
		}
	case care.InventoryPayload:
		return dto.InventoryPayload{
			ItemID:     p.ItemID,
			DaysSince:  p.DaysSince,
			Threshold:  p.Threshold,
			StockLevel: string(p.StockLevel),
			LastBought: p.LastBought,
		}
	case care.IncidentPayload:
		return dto.IncidentPayload{
			IncidentID: p.IncidentID,
			Type:       string(p.Type),
			Status:     string(p.Status),
			Photos:     p.Photos,
			Updates:    p.Updates,
			CreatedAt:  p.CreatedAt,
		}
	}
	return nil
}

func entriesToOverlay(entries []dto.OverlayEntry) (care.Overlay, bool) {
	if len(entries) == 0 {
		return nil, true
	}
	o := make(care.Overlay, len(entries))
	for _, e := range entries {
		phase, ok := care.ParsePhase(e.Phase)
		if !ok {
			return nil, false
		}
		o[e.Key] = care.Pending{Phase: phase, Value: e.Value, Since: e.Since}
	}
	return o, true
}

func overlayToEntries(o care.Overlay) []dto.OverlayEntry {
	out := make([]dto.OverlayEntry, 0, len(o))
	for k, p := range o {
		out = append(out, dto.OverlayEntry{Key: k, Value: p.Value, Phase: p.Phase.String(), Since: p.Since})
	}
	return out
}

func catsToResponses(cats []dom.Cat) []dto.CatResponse {
	out := make([]dto.CatResponse, len(cats))
	for i, c := range cats {
		out[i] = dto.CatResponse{ID: c.ID, Name: c.Name, PhotoPath: c.PhotoPath, SortOrder: c.SortOrder, CreatedAt: c.CreatedAt}
	}
	return out
}

func careLogToResponse(l dom.CareLog) dto.CareLogResponse {
	return dto.CareLogResponse{ID: l.ID, Type: l.Type, CatID: l.CatID, DoneBy: l.DoneBy, DoneAt: l.DoneAt}
}

func slotStrings(slots []dom.MealSlot) []string {
	out := make([]string, len(slots))
	for i, s := range slots {
		out[i] = string(s)
	}
	return out
}

func taskDefToResponse(d dom.CareTaskDef) dto.TaskDefResponse {
	return dto.TaskDefResponse{
		ID:             d.ID,
		Title:          d.Title,
		Icon:           d.Icon,
		Frequency:      string(d.Frequency),
		MealSlots:      slotStrings(d.Slots()),
		FrequencyCount: d.GoalCount(),
		PerCat:         d.PerCat,
		TargetCatIDs:   d.TargetCatIDs,
		SortOrder:      d.SortOrder,
		CreatedAt:      d.CreatedAt,
	}
}

func taskDefFromRequest(householdID int64, req dto.TaskDefRequest) dom.CareTaskDef {
	d := dom.CareTaskDef{
		HouseholdID:    householdID,
		Title:          req.Title,
		Icon:           req.Icon,
		Frequency:      dom.Frequency(req.Frequency),
		FrequencyCount: req.FrequencyCount,
		PerCat:         req.PerCat,
		TargetCatIDs:   req.TargetCatIDs,
		SortOrder:      req.SortOrder,
	}
	if req.MealSlots != nil {
		d.MealSlots = make([]dom.MealSlot, len(req.MealSlots))
		for i, s := range req.MealSlots {
			d.MealSlots[i] = dom.MealSlot(s)
		}
	}
	return d
}

func noticeDefToResponse(d dom.NoticeDef) dto.NoticeDefResponse {
	return dto.NoticeDefResponse{
		ID:           d.ID,
		Title:        d.Title,
		Kind:         d.Kind,
		Category:     string(d.Category),
		InputType:    string(d.InputType),
		Choices:      care.Choices(d),
		NormalValues: care.NormalValues(d),
		SortOrder:    d.SortOrder,
		CreatedAt:    d.CreatedAt,
	}
}

func observationToResponse(o dom.Observation) dto.ObservationResponse {
	return dto.ObservationResponse{
		ID:             o.ID,
		CatID:          o.CatID,
		NoticeID:       dom.ParseID(o.Type),
		Value:          o.Value,
		RecordedBy:     o.RecordedBy,
		RecordedAt:     o.RecordedAt,
		AcknowledgedAt: o.AcknowledgedAt,
	}
}

func inventoryToResponse(it dom.InventoryItem) dto.InventoryResponse {
	return dto.InventoryResponse{
		ID:         it.ID,
		Label:      it.Label,
		RangeMin:   it.RangeMin,
		RangeMax:   it.RangeMax,
		AlertDays:  it.AlertDays,
		LastBought: it.LastBought,
		StockLevel: string(it.StockLevel),
		Enabled:    it.Enabled,
		UpdatedAt:  it.UpdatedAt,
	}
}

func settingsToResponse(s dom.Settings) dto.SettingsResponse {
	return dto.SettingsResponse{
		DayStartHour:  s.DayStartHour,
		ActiveThemeID: s.ActiveThemeID,
		Layout:        s.Layout,
		Points:        s.Points,
	}
}
