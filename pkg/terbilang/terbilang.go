// Package terbilang converts integer rupiah amounts to their Indonesian
// word representation, as printed on the nota form.
package terbilang

import "strings"

var satuan = []string{
	"", "satu", "dua", "tiga", "empat", "lima", "enam", "tujuh", "delapan", "sembilan",
	"sepuluh", "sebelas", "dua belas", "tiga belas", "empat belas", "lima belas",
	"enam belas", "tujuh belas", "delapan belas", "sembilan belas",
}

// ratusan converts 0 <= n < 1000 to words. Returns "" for 0 so callers can
// skip empty groups.
func ratusan(n int64) string {
	if n == 0 {
		return ""
	}
	if n < 20 {
		return satuan[n]
	}
	if n < 100 {
		head := satuan[n/10] + " puluh"
		if sisa := n % 10; sisa != 0 {
			return head + " " + satuan[sisa]
		}
		return head
	}
	ratus := n / 100
	sisa := n % 100
	var head string
	if ratus == 1 {
		head = "seratus"
	} else {
		head = satuan[ratus] + " ratus"
	}
	if sisa != 0 {
		return head + " " + ratusan(sisa)
	}
	return head
}

// Words renders n as lower-case Indonesian words followed by "rupiah".
// Zero yields "nol rupiah"; negative amounts are prefixed with "minus".
func Words(n int64) string {
	if n == 0 {
		return "nol rupiah"
	}
	if n < 0 {
		return "minus " + Words(-n)
	}

	triliun := n / 1_000_000_000_000
	miliar := (n % 1_000_000_000_000) / 1_000_000_000
	juta := (n % 1_000_000_000) / 1_000_000
	ribu := (n % 1_000_000) / 1_000
	sisa := n % 1_000

	var parts []string
	if triliun != 0 {
		parts = append(parts, ratusan(triliun)+" triliun")
	}
	if miliar != 0 {
		parts = append(parts, ratusan(miliar)+" miliar")
	}
	if juta != 0 {
		parts = append(parts, ratusan(juta)+" juta")
	}
	if ribu != 0 {
		if ribu == 1 {
			parts = append(parts, "seribu")
		} else {
			parts = append(parts, ratusan(ribu)+" ribu")
		}
	}
	if sisa != 0 {
		parts = append(parts, ratusan(sisa))
	}

	return strings.Join(parts, " ") + " rupiah"
}
