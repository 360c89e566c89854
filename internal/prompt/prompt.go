// Package prompt 组装スカウト文生成用的 system / user 提示词
// 纯函数：相同输入始终得到相同输出，不访问数据库也不做网络调用
package prompt

import (
	"fmt"
	"strings"
)

// JobTypeDefinition 职种名称与定义
type JobTypeDefinition struct {
	Name       string
	Definition string
}

// Selection 生成请求解析后的引用集合
// JobTypes 为全部职种（创建顺序），JobType / OutputRuleText 为本次选中的记录
type Selection struct {
	JobTypes       []JobTypeDefinition
	JobType        JobTypeDefinition
	OutputRuleText string
}

// Input 用户填写的自由文本
type Input struct {
	Industry           string
	CompanyRequirement string
	OfferTemplate      string
	StudentProfile     string
}

// Prompt 组装结果
type Prompt struct {
	System string
	User   string
}

// Build 组装提示词
func Build(sel Selection, in Input) Prompt {
	return Prompt{
		System: buildSystem(sel),
		User:   buildUser(sel.JobType.Name, in),
	}
}

func buildSystem(sel Selection) string {
	defs := make([]string, 0, len(sel.JobTypes))
	for _, jt := range sel.JobTypes {
		defs = append(defs, fmt.Sprintf("%s：%s", jt.Name, jt.Definition))
	}

	var b strings.Builder
	b.WriteString("あなたは就職活動のための企業からの評価コメント生成アシスタントです。\n\n")
	b.WriteString("# 重要な制約事項\n")
	b.WriteString("1. **出力ルールは絶対に遵守してください** - 以下の【出力ルール】に記載された全ての指示に従うこと\n")
	b.WriteString("2. **職種特性を最優先** - 指定された職種の定義に合致する要素を重点的に評価すること\n")
	b.WriteString("3. **業種への適合性** - 指定業種で求められるスキルや経験を考慮すること\n")
	b.WriteString("4. **企業要求の反映** - 企業が望むことを必ず評価に含めること\n\n")

	b.WriteString("【全職種適性の定義】\n")
	b.WriteString(strings.Join(defs, "\n"))
	b.WriteString("\n\n")

	b.WriteString("【今回の指定職種】\n")
	fmt.Fprintf(&b, "%s：%s\n\n", sel.JobType.Name, sel.JobType.Definition)

	b.WriteString("【出力ルール（厳守）】\n")
	b.WriteString(sel.OutputRuleText)
	b.WriteString("\n\n")

	b.WriteString("# 評価の優先順位\n")
	fmt.Fprintf(&b, "1. 指定職種（%s）の特性に合致するエピソードを最優先\n", sel.JobType.Name)
	b.WriteString("2. 企業が望むこと（後述）との整合性\n")
	b.WriteString("3. 業種（後述）で求められる資質との適合性\n")
	b.WriteString("4. 出力ルールで指定された形式・文字数・構成の厳守")
	return b.String()
}

func buildUser(jobType string, in Input) string {
	var b strings.Builder
	b.WriteString("# 依頼内容\n\n")

	fmt.Fprintf(&b, "【職種】%s\n", jobType)
	b.WriteString("※この職種の定義に基づいてエピソードを評価してください\n\n")

	fmt.Fprintf(&b, "【業種】%s\n", in.Industry)
	b.WriteString("※この業種で求められるスキルや経験を考慮してください\n\n")

	b.WriteString("【企業が望むこと】\n")
	b.WriteString(in.CompanyRequirement)
	b.WriteString("\n※この要素を評価コメントに必ず反映させてください\n\n")

	b.WriteString("【オファー文テンプレート】\n")
	b.WriteString(in.OfferTemplate)
	b.WriteString("\n※このテンプレートの【】内部分のみを作成してください\n\n")

	b.WriteString("【学生のプロフィール】\n")
	b.WriteString(in.StudentProfile)
	b.WriteString("\n\n")

	b.WriteString("# 作成手順\n")
	fmt.Fprintf(&b, "1. 学生のプロフィールから、指定職種（%s）の特性に最も合致するエピソードを特定する\n", jobType)
	fmt.Fprintf(&b, "2. 企業が望むこと（%s）との整合性を確認する\n", in.CompanyRequirement)
	fmt.Fprintf(&b, "3. 業種（%s）で求められる要素を考慮する\n", in.Industry)
	b.WriteString("4. 【出力ルール】に記載された文字数・形式・構成を厳密に守る\n")
	b.WriteString("5. オファー文テンプレートの【】内部分のみを、上記1-4を踏まえて作成する\n\n")

	b.WriteString("**注意**: テンプレート全体ではなく、【】内部分のみを出力してください。")
	b.WriteString("出力ルールに記載された全ての指示を必ず遵守してください。")
	b.WriteString("プロフィールに記載のない情報を想像したり、拡大解釈したりはしないでください。")
	return b.String()
}
