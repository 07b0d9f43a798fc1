package main

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"finitefield.org/elarion-web/internal/checkout"
	handlersPkg "finitefield.org/elarion-web/internal/handlers"
	mw "finitefield.org/elarion-web/internal/middleware"
	"finitefield.org/elarion-web/internal/observability"
	"finitefield.org/elarion-web/internal/storefront"
)

// dispatch applies ev to the visitor's session. A session torn down by the
// idle janitor between lookup and dispatch is remounted once.
func (a *app) dispatch(r *http.Request, ev storefront.Event) (storefront.Snapshot, error) {
	sess := mw.StorefrontFromContext(r.Context())
	if sess == nil {
		return storefront.Snapshot{}, storefront.ErrSessionClosed
	}
	snap, err := sess.Dispatch(r.Context(), ev)
	if !errors.Is(err, storefront.ErrSessionClosed) {
		return snap, err
	}
	sess, _, err = a.registry.Open(sess.ID())
	if err != nil {
		return storefront.Snapshot{}, err
	}
	observability.FromContext(r.Context()).Info("storefront session remounted", zap.String("session_id", sess.ID()))
	return sess.Dispatch(r.Context(), ev)
}

func (a *app) snapshot(r *http.Request) storefront.Snapshot {
	if sess := mw.StorefrontFromContext(r.Context()); sess != nil {
		return sess.Snapshot()
	}
	return storefront.Snapshot{}
}

func (a *app) page(r *http.Request, snap storefront.Snapshot, submitErr error) handlersPkg.PageData {
	lang := mw.Lang(r)
	return handlersPkg.BuildPage(snap, lang, mw.CSRFToken(r), a.pageMeta(r, lang), submitErr)
}

// finish answers a state-changing request: htmx callers get fragments,
// plain form posts are redirected back to the page.
func (a *app) finish(w http.ResponseWriter, r *http.Request, status int, data handlersPkg.PageData, names ...string) {
	if !mw.IsHTMX(r.Context()) && r.Method == http.MethodPost && status < 300 {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	if !mw.IsHTMX(r.Context()) && r.Method == http.MethodGet {
		names = []string{"base"}
	}
	a.render(w, r, status, data, names...)
}

func (a *app) failDispatch(w http.ResponseWriter, r *http.Request, err error) {
	lang := mw.Lang(r)
	switch {
	case errors.Is(err, storefront.ErrUnknownProduct):
		mw.WriteError(w, r, http.StatusNotFound, a.bundle.T(lang, "error.not_found"))
	case errors.Is(err, storefront.ErrUnknownField), errors.Is(err, storefront.ErrUnknownEvent):
		mw.WriteError(w, r, http.StatusBadRequest, a.bundle.T(lang, "error.bad_request"))
	case errors.Is(err, r.Context().Err()):
		mw.WriteError(w, r, http.StatusServiceUnavailable, err.Error())
	default:
		observability.FromContext(r.Context()).Error("dispatch failed", zap.Error(err))
		mw.WriteError(w, r, http.StatusInternalServerError, "internal error")
	}
}

// homeHandler renders the full storefront. A ?q= parameter restores a
// pushed search URL.
func (a *app) homeHandler(w http.ResponseWriter, r *http.Request) {
	snap := a.snapshot(r)
	if q, ok := r.URL.Query()["q"]; ok {
		var err error
		if snap, err = a.dispatch(r, storefront.SetQuery{Query: q[0]}); err != nil {
			a.failDispatch(w, r, err)
			return
		}
	}
	a.render(w, r, http.StatusOK, a.page(r, snap, nil), "base")
}

// productsFrag filters the grid and pushes the query into the address bar.
func (a *app) productsFrag(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	snap, err := a.dispatch(r, storefront.SetQuery{Query: q})
	if err != nil {
		a.failDispatch(w, r, err)
		return
	}
	push := "/"
	if q != "" {
		push += "?" + url.Values{"q": {q}}.Encode()
	}
	mw.PushURL(w, push)
	a.finish(w, r, http.StatusOK, a.page(r, snap, nil), "products")
}

// introFrag is polled by the splash overlay. Once hidden it answers 286 with
// an empty body so htmx removes the overlay and stops polling.
func (a *app) introFrag(w http.ResponseWriter, r *http.Request) {
	snap := a.snapshot(r)
	if !snap.State.IntroVisible {
		w.WriteHeader(mw.StatusStopPolling)
		return
	}
	a.render(w, r, http.StatusOK, a.page(r, snap, nil), "intro")
}

func (a *app) addToCartHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(strings.TrimSpace(r.FormValue("product_id")))
	if err != nil {
		mw.WriteError(w, r, http.StatusBadRequest, a.bundle.T(mw.Lang(r), "error.bad_request"))
		return
	}
	snap, err := a.dispatch(r, storefront.AddToCart{ProductID: id})
	if err != nil {
		a.failDispatch(w, r, err)
		return
	}
	mw.Trigger(w, map[string]any{
		"cart:updated": map[string]any{
			"count": snap.ItemCount,
			"total": snap.Total.StringFixed(2),
		},
	})
	a.finish(w, r, http.StatusOK, a.page(r, snap, nil), "nav")
}

func (a *app) scrollHandler(w http.ResponseWriter, r *http.Request) {
	offset, err := strconv.ParseFloat(strings.TrimSpace(r.FormValue("offset")), 64)
	if err != nil {
		mw.WriteError(w, r, http.StatusBadRequest, a.bundle.T(mw.Lang(r), "error.bad_request"))
		return
	}
	sess := mw.StorefrontFromContext(r.Context())
	snap, err := sess.Scroll(offset)
	if errors.Is(err, storefront.ErrSessionClosed) {
		snap, err = a.dispatch(r, storefront.Scroll{Offset: offset})
	}
	if err != nil {
		a.failDispatch(w, r, err)
		return
	}
	a.finish(w, r, http.StatusOK, a.page(r, snap, nil), "nav")
}

func (a *app) checkoutOpenHandler(w http.ResponseWriter, r *http.Request) {
	snap, err := a.dispatch(r, storefront.OpenCheckout{})
	if err != nil {
		a.failDispatch(w, r, err)
		return
	}
	a.finish(w, r, http.StatusOK, a.page(r, snap, nil), "checkout")
}

func (a *app) checkoutCloseHandler(w http.ResponseWriter, r *http.Request) {
	snap, err := a.dispatch(r, storefront.CloseCheckout{})
	if err != nil {
		a.failDispatch(w, r, err)
		return
	}
	a.finish(w, r, http.StatusOK, a.page(r, snap, nil), "checkout")
}

// checkoutSubmitHandler stores the posted fields and places the demo order.
// A failed validation re-renders the form with 422; success closes the
// overlay, refreshes the nav out of band and raises checkout:placed. A post
// while the overlay is closed renders it closed and places nothing.
func (a *app) checkoutSubmitHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		mw.WriteError(w, r, http.StatusBadRequest, a.bundle.T(mw.Lang(r), "error.bad_request"))
		return
	}
	form := checkout.Form{
		Name:    r.PostForm.Get(string(checkout.FieldName)),
		Email:   r.PostForm.Get(string(checkout.FieldEmail)),
		Address: r.PostForm.Get(string(checkout.FieldAddress)),
	}
	snap, err := a.dispatch(r, storefront.SubmitCheckout{Form: &form})
	lang := mw.Lang(r)

	if errors.Is(err, checkout.ErrIncomplete) {
		data := a.page(r, snap, err)
		if !mw.IsHTMX(r.Context()) {
			a.render(w, r, http.StatusUnprocessableEntity, data, "base")
			return
		}
		a.render(w, r, http.StatusUnprocessableEntity, data, "checkout")
		return
	}
	if err != nil {
		a.failDispatch(w, r, err)
		return
	}
	if snap.Notice == "" {
		// Checkout was not open; nothing was placed.
		a.finish(w, r, http.StatusOK, a.page(r, snap, nil), "checkout")
		return
	}

	mw.Trigger(w, map[string]any{
		"checkout:placed": map[string]any{"message": a.bundle.T(lang, "checkout.placed")},
		"cart:updated":    map[string]any{"count": 0, "total": snap.Total.StringFixed(2)},
	})
	data := a.page(r, snap, nil)
	data.SwapNavOOB = true
	a.finish(w, r, http.StatusOK, data, "checkout", "nav")
}
