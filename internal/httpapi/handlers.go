package httpapi

import (
	"net/http"

	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/models"
)

type handler struct {
	ledger Ledger
}

func (h *handler) createGroup(w http.ResponseWriter, r *http.Request) {
	var req groupRequest
	if err := decode(r, &req); err != nil {
		writeLedgerError(w, r, err)
		return
	}

	group, err := h.ledger.CreateGroup(r.Context(), ledger.GroupInput{Name: req.Name, Members: req.UserIDs})
	if err != nil {
		writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toGroup(group))
}

func (h *handler) listGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := h.ledger.ListGroups(r.Context())
	if err != nil {
		writeLedgerError(w, r, err)
		return
	}

	out := make([]groupResponse, len(groups))
	for i, g := range groups {
		out[i] = toGroup(g)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handler) getGroup(w http.ResponseWriter, r *http.Request) {
	groupID, err := idParam(r, "groupID")
	if err != nil {
		writeLedgerError(w, r, err)
		return
	}

	group, err := h.ledger.GetGroup(r.Context(), groupID)
	if err != nil {
		writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toGroup(group))
}

func (h *handler) updateGroup(w http.ResponseWriter, r *http.Request) {
	groupID, err := idParam(r, "groupID")
	if err != nil {
		writeLedgerError(w, r, err)
		return
	}
	var req groupPatch
	if err := decode(r, &req); err != nil {
		writeLedgerError(w, r, err)
		return
	}

	group, err := h.ledger.UpdateGroup(r.Context(), groupID, ledger.GroupUpdate{Name: req.Name, Members: req.UserIDs})
	if err != nil {
		writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toGroup(group))
}

func (h *handler) deleteGroup(w http.ResponseWriter, r *http.Request) {
	groupID, err := idParam(r, "groupID")
	if err != nil {
		writeLedgerError(w, r, err)
		return
	}

	if err := h.ledger.DeleteGroup(r.Context(), groupID); err != nil {
		writeLedgerError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) recordExpense(w http.ResponseWriter, r *http.Request) {
	groupID, err := idParam(r, "groupID")
	if err != nil {
		writeLedgerError(w, r, err)
		return
	}
	var req expenseRequest
	if err := decode(r, &req); err != nil {
		writeLedgerError(w, r, err)
		return
	}

	expense, err := h.ledger.RecordExpense(r.Context(), groupID, req.input())
	if err != nil {
		writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toExpense(expense))
}

func (h *handler) listExpenses(w http.ResponseWriter, r *http.Request) {
	groupID, err := idParam(r, "groupID")
	if err != nil {
		writeLedgerError(w, r, err)
		return
	}

	expenses, err := h.ledger.ListExpenses(r.Context(), groupID)
	if err != nil {
		writeLedgerError(w, r, err)
		return
	}

	out := make([]expenseResponse, len(expenses))
	for i := range expenses {
		out[i] = toExpense(&expenses[i])
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handler) recordSettlement(w http.ResponseWriter, r *http.Request) {
	groupID, err := idParam(r, "groupID")
	if err != nil {
		writeLedgerError(w, r, err)
		return
	}
	var req settlementRequest
	if err := decode(r, &req); err != nil {
		writeLedgerError(w, r, err)
		return
	}

	settlement, err := h.ledger.RecordSettlement(r.Context(), groupID, ledger.SettlementInput{
		From:   req.FromUser,
		To:     req.ToUser,
		Amount: req.Amount,
		Note:   req.Note,
	})
	if err != nil {
		writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toSettlement(settlement))
}

func (h *handler) listSettlements(w http.ResponseWriter, r *http.Request) {
	groupID, err := idParam(r, "groupID")
	if err != nil {
		writeLedgerError(w, r, err)
		return
	}

	settlements, err := h.ledger.ListSettlements(r.Context(), groupID)
	if err != nil {
		writeLedgerError(w, r, err)
		return
	}

	out := make([]settlementResponse, len(settlements))
	for i := range settlements {
		out[i] = toSettlement(&settlements[i])
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handler) getBalances(w http.ResponseWriter, r *http.Request) {
	groupID, err := idParam(r, "groupID")
	if err != nil {
		writeLedgerError(w, r, err)
		return
	}

	balances, err := h.ledger.GetBalances(r.Context(), groupID)
	if err != nil {
		writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toBalances(balances))
}

func (h *handler) getTransfers(w http.ResponseWriter, r *http.Request) {
	groupID, err := idParam(r, "groupID")
	if err != nil {
		writeLedgerError(w, r, err)
		return
	}

	transfers, err := h.ledger.GetSuggestedTransfers(r.Context(), groupID)
	if err != nil {
		writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransfers(transfers))
}

func (h *handler) getSummary(w http.ResponseWriter, r *http.Request) {
	groupID, err := idParam(r, "groupID")
	if err != nil {
		writeLedgerError(w, r, err)
		return
	}

	summary, err := h.ledger.GetSummary(r.Context(), groupID)
	if err != nil {
		writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSummary(summary))
}

func (h *handler) getMemberBalances(w http.ResponseWriter, r *http.Request) {
	memberID, err := idParam(r, "memberID")
	if err != nil {
		writeLedgerError(w, r, err)
		return
	}

	balances, err := h.ledger.GetMemberBalances(r.Context(), models.MemberID(memberID))
	if err != nil {
		writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toMemberBalances(balances))
}
