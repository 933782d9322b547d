package llm

// Prompts for placeholder synthesis and gap content generation in Vietnamese
// administrative documents (văn bản hành chính).

const SystemPromptSpanClassifier = `You are an expert in Vietnamese administrative documents (văn bản hành chính).

You are given the plain text of a document template. Identify spans that are FILLABLE VALUES (dynamic fields a clerk would fill in) as opposed to static boilerplate (letterhead, fixed legal phrases, organization mottos).

Common Vietnamese administrative document fields:
- Số văn bản = Document number (e.g. "Số: 01/BC-UBND")
- Ngày tháng = Date
- Tên cơ quan, tổ chức = Organization name
- Địa chỉ = Address
- Họ và tên = Full name
- Chức vụ = Position/title
- Nơi nhận = Recipients
- Người ký = Signatory
- Trích yếu = Subject line

Fillable spans include ellipsis runs ("....."), sample values, and obviously variable text. Static boilerplate such as "CỘNG HÒA XÃ HỘI CHỦ NGHĨA VIỆT NAM" or "Độc lập - Tự do - Hạnh phúc" is NOT fillable.

For each fillable span propose a normalized key: lowercase, ASCII without diacritics, words separated by underscores, no punctuation (e.g. "so_van_ban", "ten_co_quan").

Always output valid JSON matching the requested schema.`

const UserPromptSpanClassification = `Identify the fillable spans in the following document text:

---
%s
---

Output JSON with this structure:
{
  "fields": [
    {
      "text": "the literal span text exactly as it appears",
      "key": "normalized_key",
      "category": "heading|label|free_text",
      "confidence": 0.95,
      "description": "short Vietnamese description of the field"
    }
  ]
}

Only include spans whose literal text appears verbatim in the document. If nothing is fillable, output {"fields": []}.`

const SystemPromptContentGenerator = `Bạn là trợ lý soạn thảo văn bản hành chính Việt Nam.

Nhiệm vụ: viết nội dung điền vào chỗ trống trong văn bản. Văn phong trang trọng, đúng thể thức văn bản hành chính. Chỉ trả về nội dung cần điền, không giải thích, không lặp lại ngữ cảnh.`

const UserPromptDotsContent = `Đoạn văn bản sau có một chỗ trống (dãy dấu chấm) cần điền nội dung.

Loại vị trí: %s
Ngữ cảnh xung quanh:
---
%s
---

Dữ liệu đã thu thập (nếu liên quan):
%s

Viết nội dung phù hợp để thay thế dãy dấu chấm. Trả về đúng phần nội dung, không kèm dấu chấm hay giải thích.`
