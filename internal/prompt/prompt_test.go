package prompt

import (
	"strings"
	"testing"
)

func sampleSelection() Selection {
	return Selection{
		JobTypes: []JobTypeDefinition{
			{Name: "営業", Definition: "顧客との関係構築力"},
			{Name: "エンジニア", Definition: "技術的な課題解決力"},
			{Name: "企画", Definition: "構想力と推進力"},
		},
		JobType:        JobTypeDefinition{Name: "エンジニア", Definition: "技術的な課題解決力"},
		OutputRuleText: "200文字以内で記述すること",
	}
}

func sampleInput() Input {
	return Input{
		Industry:           "SaaS",
		CompanyRequirement: "自走力",
		OfferTemplate:      "はじめまして。【ここに評価コメント】ぜひお話しさせてください。",
		StudentProfile:     "学園祭アプリを開発し3000人が利用",
	}
}

func TestBuild_SystemListsAllJobTypesInOrder(t *testing.T) {
	p := Build(sampleSelection(), sampleInput())

	listing := "営業：顧客との関係構築力\nエンジニア：技術的な課題解決力\n企画：構想力と推進力"
	if !strings.Contains(p.System, "【全職種適性の定義】\n"+listing) {
		t.Errorf("system 提示词缺少按创建顺序排列的职种定义:\n%s", p.System)
	}
	if !strings.Contains(p.System, "【今回の指定職種】\nエンジニア：技術的な課題解決力") {
		t.Error("system 提示词缺少指定职种的强调段落")
	}
	if !strings.Contains(p.System, "【出力ルール（厳守）】\n200文字以内で記述すること") {
		t.Error("system 提示词缺少输出规则原文")
	}

	all := strings.Index(p.System, "【全職種適性の定義】")
	selected := strings.Index(p.System, "【今回の指定職種】")
	rule := strings.Index(p.System, "【出力ルール（厳守）】")
	if !(all < selected && selected < rule) {
		t.Errorf("system 段落顺序错误: all=%d selected=%d rule=%d", all, selected, rule)
	}
}

func TestBuild_UserSectionsInOrder(t *testing.T) {
	in := sampleInput()
	p := Build(sampleSelection(), in)

	labels := []string{
		"【職種】エンジニア",
		"【業種】" + in.Industry,
		"【企業が望むこと】\n" + in.CompanyRequirement,
		"【オファー文テンプレート】\n" + in.OfferTemplate,
		"【学生のプロフィール】\n" + in.StudentProfile,
		"# 作成手順",
	}
	last := -1
	for _, l := range labels {
		idx := strings.Index(p.User, l)
		if idx < 0 {
			t.Fatalf("user 提示词缺少段落 %q", l)
		}
		if idx <= last {
			t.Errorf("段落 %q 顺序错误", l)
		}
		last = idx
	}
	if !strings.Contains(p.User, "【】内部分のみを出力してください") {
		t.Error("user 提示词缺少只输出【】内部分的指示")
	}
	if !strings.Contains(p.User, "プロフィールに記載のない情報を想像") {
		t.Error("user 提示词缺少禁止臆造信息的指示")
	}
}

func TestBuild_Deterministic(t *testing.T) {
	a := Build(sampleSelection(), sampleInput())
	b := Build(sampleSelection(), sampleInput())
	if a != b {
		t.Error("相同输入应得到相同提示词")
	}
}

func TestBuild_EmptyJobTypeListing(t *testing.T) {
	sel := sampleSelection()
	sel.JobTypes = nil
	p := Build(sel, sampleInput())
	if !strings.Contains(p.System, "【全職種適性の定義】\n\n\n【今回の指定職種】") {
		t.Errorf("无职种时列表应为空:\n%s", p.System)
	}
}
