package sql

import (
	"testing"
)

func BenchmarkStatement_InsertSmall(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		Table("users").Insert(
			Set("id", 1),
			Set("age", 30),
			Set("first_name", "Ariel"),
			Set("last_name", "Mashraki"),
			Set("nickname", "a8m"),
		).Query()
	}
}

func BenchmarkStatement_SelectSimple(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		Table("users").Select("id", "name", "email").Query()
	}
}

func BenchmarkStatement_SelectWithJoins(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		Table("users u").
			Join("posts p", "u.id = p.user_id").
			Select("u.id", "u.name", "p.title").
			WhereFields(EQ("u.active", true)).
			OrderBy("u.created_at").
			Limit(10).
			Query()
	}
}

func BenchmarkStatement_SelectComplexWhere(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		Table("orders").
			Where("status =", "open").
			And("total >", 100).
			OrCond(Match(EQ("priority", "high"), EQ("region", "eu"))).
			GroupBy("region").
			Having("COUNT(*) >", 5).
			OrderBy("region").
			Query()
	}
}

func BenchmarkStatement_Update(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		Table("users").
			Update(Set("age", 31), Set("visits", Expr("visits + ?", 1))).
			WhereFields(EQ("id", 7)).
			Query()
	}
}

func BenchmarkStatement_With(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		sub := Table("users").Select("id").Where("age >", 30)
		Table("grown").
			Select("id").
			With("grown", sub).
			Limit(10).
			Query()
	}
}

func BenchmarkStatement_Clone(b *testing.B) {
	base := Table("users").
		Select("id", "name").
		Where("age >", 30).
		OrderBy("id")
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		base.Clone()
	}
}

func BenchmarkCond_Chain(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		NewCond("x =", 1).And("y =", 2).Or("z =", 3)
	}
}
