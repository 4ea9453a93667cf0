package entity

import "testing"

func TestNormalizeStatusLegacySynonyms(t *testing.T) {
	cases := map[string]string{
		"Aguardando Clientes":     StatusAguardandoCliente,
		"Cilindros em Manutenção": StatusEmManutencao,
		"ORÇAMENTO FINALIZADO":    StatusFinalizado,
		"Finalizados":             StatusFinalizado,
	}
	for legacy, canonical := range cases {
		if got := NormalizeStatus(legacy); got != canonical {
			t.Errorf("NormalizeStatus(%q) = %q, want %q", legacy, got, canonical)
		}
	}
}

func TestNormalizeStatusPassesThroughCanonical(t *testing.T) {
	for _, status := range []string{
		StatusCriada,
		StatusAguardandoPCP,
		StatusRevisaoNecessaria,
		StatusAguardandoCliente,
		StatusEmManutencao,
		StatusAguardandoConferencia,
		StatusFinalizado,
	} {
		if got := NormalizeStatus(status); got != status {
			t.Errorf("NormalizeStatus(%q) = %q, want unchanged", status, got)
		}
	}
}

func TestCanTransition(t *testing.T) {
	allowed := []struct{ from, to string }{
		{StatusCriada, StatusAguardandoCliente},
		{StatusCriada, StatusRevisaoNecessaria},
		{StatusAguardandoPCP, StatusAguardandoCliente},
		{StatusAguardandoPCP, StatusRevisaoNecessaria},
		{StatusRevisaoNecessaria, StatusAguardandoPCP},
		{StatusAguardandoCliente, StatusEmManutencao},
		{StatusEmManutencao, StatusAguardandoConferencia},
		{StatusAguardandoConferencia, StatusFinalizado},
	}
	for _, tc := range allowed {
		if !CanTransition(tc.from, tc.to) {
			t.Errorf("expected %s → %s to be allowed", tc.from, tc.to)
		}
	}

	denied := []struct{ from, to string }{
		{StatusCriada, StatusEmManutencao},
		{StatusAguardandoCliente, StatusFinalizado},
		{StatusFinalizado, StatusAguardandoPCP},
		{StatusFinalizado, StatusCriada},
		{StatusEmManutencao, StatusFinalizado},
	}
	for _, tc := range denied {
		if CanTransition(tc.from, tc.to) {
			t.Errorf("expected %s → %s to be denied", tc.from, tc.to)
		}
	}
}

func TestCanTransitionNormalizesLegacyFrom(t *testing.T) {
	// A record still carrying a legacy spelling must transition as its
	// canonical equivalent.
	if !CanTransition("Aguardando Clientes", StatusEmManutencao) {
		t.Error("expected legacy 'Aguardando Clientes' to release into maintenance")
	}
	if CanTransition("Finalizados", StatusAguardandoPCP) {
		t.Error("expected legacy terminal status to stay terminal")
	}
}

func TestFinalizadoIsTerminal(t *testing.T) {
	if targets := ValidStatusTransitions[StatusFinalizado]; len(targets) != 0 {
		t.Errorf("expected no transitions out of %s, got %v", StatusFinalizado, targets)
	}
}
